package controllers

import (
	"github.com/campusprint/printhub/app/models"
	"github.com/campusprint/printhub/pkg/identity"
	"github.com/campusprint/printhub/pkg/resource"
)

var orderFileResource resource.Transformer[models.OrderFile] = func(f models.OrderFile) resource.Map {
	return resource.Map{
		"id":                f.ID,
		"file_key":          f.FileKey,
		"original_filename": f.OriginalFilename,
		"page_count":        f.PageCount,
		"color_type":        f.ColorType,
		"is_double_sided":   f.IsDoubleSided,
		"pages_per_side":    f.PagesPerSide,
		"copies":            f.Copies,
		"comments":          f.Comments,
	}
}

func orderBase(o models.Order) resource.Map {
	return resource.Map{
		"id":              o.ID,
		"status":          o.Status,
		"total_price":     o.TotalPrice,
		"delivery_hostel": o.DeliveryHostel,
		"delivery_gate":   o.DeliveryGate,
		"delivery_phone":  o.DeliveryPhone,
		"expected_time":   o.ExpectedTime,
		"notes":           o.Notes,
		"created_at":      o.CreatedAt,
		"updated_at":      o.UpdatedAt,
		"files":           resource.Collection(o.Files, orderFileResource),
	}
}

// studentOrderResource names the shop handling the order.
var studentOrderResource resource.Transformer[models.Order] = func(o models.Order) resource.Map {
	out := orderBase(o)
	out["vendor_name"] = nil
	out["vendor_phone"] = nil
	if o.Vendor != nil {
		out["vendor_name"] = o.Vendor.ShopName
		out["vendor_phone"] = o.Vendor.ContactPhone
	}
	return out
}

// vendorOrderResource names the student who placed the order.
var vendorOrderResource resource.Transformer[models.Order] = func(o models.Order) resource.Map {
	out := orderBase(o)
	out["user_email"] = nil
	out["user_name"] = nil
	if o.User != nil {
		resource.Merge(out, resource.Map{
			"user_email": o.User.Email,
			"user_name":  o.User.Name,
		}, resource.When(o.User.Phone != "", resource.Map{"user_phone": o.User.Phone}))
	}
	return out
}

var vendorProfileResource resource.Transformer[models.Vendor] = func(v models.Vendor) resource.Map {
	return resource.Map{
		"id":            v.ID,
		"shop_name":     v.ShopName,
		"contact_email": v.ContactEmail,
		"contact_phone": v.ContactPhone,
	}
}

var pricingResource resource.Transformer[models.PricingConfig] = func(p models.PricingConfig) resource.Map {
	return resource.Map{
		"bw_single_page":    p.BWSinglePage,
		"bw_double_page":    p.BWDoublePage,
		"color_single_page": p.ColorSinglePage,
		"color_double_page": p.ColorDoublePage,
		"delivery_fee":      p.DeliveryFee,
		"updated_at":        p.CreatedAt,
	}
}

func meResource(id identity.Identity, u models.User) resource.Map {
	return resource.Map{
		"id":     id.ID,
		"email":  id.Email,
		"name":   id.Name,
		"phone":  u.Phone,
		"hostel": u.Hostel,
	}
}
