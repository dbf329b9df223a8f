// Package http exposes the record managers as a JSON admin API.
//
// Routes mount under /admin/api:
//   - Collections: /collections
//   - Records: /{collection}, /{collection}/{id}
//   - Intents: /{collection}/{id}/reorder, /{collection}/{id}/toggle,
//     /{collection}/refresh
//   - Preview: /{collection}/{id}/preview (HTML)
//   - Notifications: /notifications
//
// Every route requires an acting user, read from the actor header.
package http
