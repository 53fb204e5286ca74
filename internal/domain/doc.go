// Package domain contains the core business concepts for the meme service.
// Keep this package free of transport (HTTP) and infrastructure (Redis/Postgres/gm) concerns.
package domain
