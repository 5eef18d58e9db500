// Command printhub is the single binary for the print ordering service.
//
//	printhub serve [--port 9000]   # HTTP API plus the session sweeper
//	printhub route:list [--json]
//	printhub schedule:list         # housekeeping tasks and their intervals
//	printhub migrate [--seed]      # run pending migrations
//	printhub migrate:rollback
//	printhub migrate:status
//	printhub seed [pricing|demo_vendor]  # default pricing and, outside production, a demo vendor
//	printhub vendor:create --username copyshop --shop "Copy Shop" --password ...
//	printhub vendor:sessions:prune
//	printhub pricing:set --bw-single 2 --bw-double 3 --color-single 5 --color-double 8 --delivery 20
//	printhub identity:code --email someone@pilani.bits-pilani.ac.in
//
// Configuration comes from config/app.json, .env and the environment; see
// package config.
package main
