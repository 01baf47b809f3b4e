package app

import _ "embed"

// indexHTML is the kiosk UI shell. The page drives the JSON endpoints from
// the browser; the console serves it so the kiosk needs no separate web
// server.
//
//go:embed index.html
var indexHTML string
