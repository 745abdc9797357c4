package web

import "embed"

// StaticFS embeds the app shell and its static assets (css/js).
//
//go:embed static/*
var StaticFS embed.FS

// ManifestTOML declares the offline asset set for this build.
//
//go:embed manifest.toml
var ManifestTOML []byte
