package web

import "embed"

// FS contains the static assets compiled into the binary. Collection copies
// them into STATIC_ROOT after the configured STATICFILES_DIRS.
//
//go:embed static/*
var FS embed.FS
