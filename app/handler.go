package main

import (
	"errors"
	"net/http"

	"github.com/sushihentaime/postboard/internal/common"
	"github.com/sushihentaime/postboard/internal/postservice"
)

// postErrorResponse maps post service errors to responses shared by every post handler.
func (app *application) postErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr common.ValidationError
	switch {
	case errors.Is(err, postservice.ErrRecordNotFound):
		app.notFoundErrorResponse(w, r)
	case errors.Is(err, postservice.ErrPermissionDenied):
		app.forbiddenErrorResponse(w, r)
	case errors.Is(err, postservice.ErrEditConflict):
		app.editConflictResponse(w, r)
	case errors.Is(err, postservice.ErrUserForeignKey):
		app.invalidAuthenticationTokenResponse(w, r)
	case errors.As(err, &validationErr):
		app.failedValidationErrorResponse(w, r, validationErr.Errors)
	default:
		app.serverErrorResponse(w, r, err)
	}
}

func (app *application) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := app.readLimitOffsetParams(r)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	posts, err := app.postService.ListPosts(r.Context(), r.URL.Query().Get("q"), limit, offset)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"posts": posts}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

func (app *application) showPostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r)
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	post, err := app.postService.GetPostBySlug(r.Context(), slug)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (app *application) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var input createPostRequest

	err := app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	user := app.getUserContext(r)

	post, err := app.postService.CreatePost(r.Context(), user, &postservice.CreatePostInput{
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, postPath(post.Slug), http.StatusFound, envelope{"post": post})
}

// editPostHandler returns the current values for the owner's edit form.
func (app *application) editPostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r)
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	post, err := app.postService.GetPostForEdit(r.Context(), app.getUserContext(r), slug)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// updatePostRequest has no slug or owner field; the decoder rejects them as unknown.
type updatePostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

func (app *application) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r)
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	var input updatePostRequest
	err = app.parseJSON(w, r, &input)
	if err != nil {
		app.badRequestErrorResponse(w, r, err)
		return
	}

	post, err := app.postService.UpdatePost(r.Context(), app.getUserContext(r), slug, &postservice.UpdatePostInput{
		Title:   input.Title,
		Content: input.Content,
	})
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, postPath(post.Slug), http.StatusFound, envelope{"post": post})
}

func (app *application) confirmDeletePostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r)
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	post, err := app.postService.GetPostForEdit(r.Context(), app.getUserContext(r), slug)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	err = app.writeJSON(w, http.StatusOK, envelope{"post": post, "message": "confirm deletion of this post"}, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}
}

// deletePostHandler does not redirect anonymous requesters to sign in; they get 403
// like any other non-owner.
func (app *application) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	slug, err := app.readSlugParam(r)
	if err != nil {
		app.notFoundErrorResponse(w, r)
		return
	}

	err = app.postService.DeletePost(r.Context(), app.getUserContext(r), slug)
	if err != nil {
		app.postErrorResponse(w, r, err)
		return
	}

	app.redirect(w, r, "/v1/posts", http.StatusFound, envelope{"message": "post deleted"})
}
