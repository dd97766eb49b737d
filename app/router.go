package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (app *application) routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(app.notFoundErrorResponse)
	router.MethodNotAllowed = http.HandlerFunc(app.methodNotAllowedErrorResponse)

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", app.healthCheckHandler)

	// user service
	router.HandlerFunc(http.MethodPost, "/v1/users/register", app.registerUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/login", app.loginUserHandler)
	router.HandlerFunc(http.MethodPost, "/v1/users/logout", app.requireAuthUser(app.logoutUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/:id/posts", app.listUserPostsHandler)

	// post service
	router.HandlerFunc(http.MethodGet, "/v1/posts", app.requireSignIn(app.listPostsHandler))
	router.HandlerFunc(http.MethodPost, "/v1/posts", app.requireSignIn(app.createPostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug", app.showPostHandler)
	router.HandlerFunc(http.MethodPut, "/v1/posts/:slug", app.requireSignIn(app.updatePostHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/posts/:slug", app.deletePostHandler)
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug/edit", app.requireSignIn(app.editPostHandler))
	router.HandlerFunc(http.MethodPost, "/v1/posts/:slug/edit", app.requireSignIn(app.updatePostHandler))
	router.HandlerFunc(http.MethodGet, "/v1/posts/:slug/delete", app.confirmDeletePostHandler)
	router.HandlerFunc(http.MethodPost, "/v1/posts/:slug/delete", app.deletePostHandler)

	return app.recoverPanic(app.logRequest(app.rateLimit(app.authenticate(router))))
}
