package controllers

import (
	"encoding/json"
	"testing"

	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/pkg/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentOrderWithoutVendor(t *testing.T) {
	out := resource.Item(models.Order{ID: 1, Status: models.StatusPending}, studentOrderResource)

	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `null`, string(mustField(t, raw, "vendor_name")))
	assert.JSONEq(t, `[]`, string(mustField(t, raw, "files")))
}

func TestVendorOrderHidesInternalIDs(t *testing.T) {
	o := models.Order{
		ID:     7,
		UserID: 3,
		Status: models.StatusAccepted,
		User:   &models.User{Email: "a@pilani.bits-pilani.ac.in", Name: "A", IdentityID: "secret"},
		Files:  []models.OrderFile{{ID: 2, FileKey: "uploads/u/x.pdf", Copies: 1, PagesPerSide: 1}},
	}
	out := resource.Item(o, vendorOrderResource)

	assert.Equal(t, "a@pilani.bits-pilani.ac.in", out["user_email"])
	assert.NotContains(t, out, "user_id")
	assert.NotContains(t, out, "user_phone")
	raw, err := json.Marshal(out)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
}

func TestVendorProfileOmitsCredentials(t *testing.T) {
	out := resource.Item(models.Vendor{ID: 1, Username: "shop", PasswordHash: "$2a$...", ShopName: "Shop"}, vendorProfileResource)
	assert.Equal(t, resource.Map{"id": uint(1), "shop_name": "Shop", "contact_email": "", "contact_phone": ""}, out)
}

func mustField(t *testing.T, raw []byte, key string) json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	v, ok := m[key]
	require.True(t, ok, key)
	return v
}
