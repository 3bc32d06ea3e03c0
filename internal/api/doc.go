// Package api contains the HTTP handlers, request/response models, and
// error mapping for the task board API. Handlers stay thin: they decode
// and validate the request, call the service layer, and translate the
// result into an HTTP response.
package api
