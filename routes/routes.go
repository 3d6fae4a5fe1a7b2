package routes

// Routes package registers the admin HTTP surface.
//
// Layout:
// - api.go: health + /v1/admin routes
// - routes.go: export functions
