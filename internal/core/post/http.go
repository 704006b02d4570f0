// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/circleblog/internal/platform/middleware"
	requestutil "github.com/taibuivan/circleblog/internal/platform/request"
	"github.com/taibuivan/circleblog/internal/platform/respond"
	"github.com/taibuivan/circleblog/internal/platform/validate"
	"github.com/taibuivan/circleblog/pkg/pagination"
)

// formOverhead is the room left for text fields next to the image in a multipart body.
const formOverhead = 1 << 20

// Handler implements the post HTTP endpoints.
type Handler struct {
	postService   *Service
	maxUpload     int64
	commentLister http.HandlerFunc
}

// NewHandler constructs a new [Handler]. maxUpload is the image size limit in bytes.
func NewHandler(service *Service, maxUpload int64) *Handler {
	return &Handler{postService: service, maxUpload: maxUpload}
}

// WithComments mounts GET /{id}/comments on this router.
func (handler *Handler) WithComments(list http.HandlerFunc) *Handler {
	handler.commentLister = list
	return handler
}

// Routes returns a [chi.Router] for /api/posts.
//
// # Endpoints
//   - GET    /              : Paginated listing (?q=&page=&limit=).
//   - GET    /mine          : Caller's posts.
//   - GET    /{id}          : Detail with counters and liked flag.
//   - POST   /              : Create (multipart or JSON).
//   - POST   /{id}, PUT     : Update, owner only.
//   - DELETE /{id}          : Delete, owner only.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Get("/", handler.list)
	router.Get("/{id}", handler.get)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/mine", handler.mine)
		r.Post("/", handler.create)
		r.Post("/{id}", handler.update)
		r.Put("/{id}", handler.update)
		r.Delete("/{id}", handler.delete)
	})

	if handler.commentLister != nil {
		router.Get("/{id}/comments", handler.commentLister)
	}

	return router
}

// # Read Endpoints

/*
GET /api/posts

Query: q (substring search), page, limit.
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	posts, meta, err := handler.postService.List(
		request.Context(),
		requestutil.Identity(request),
		Filter{Query: request.URL.Query().Get(FieldQuery)},
		pagination.FromRequest(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, FieldPosts, posts, meta)
}

// GET /api/posts/mine
func (handler *Handler) mine(writer http.ResponseWriter, request *http.Request) {
	posts, err := handler.postService.Mine(request.Context(), requestutil.Identity(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "", respond.Fields{FieldPosts: posts})
}

// GET /api/posts/{id}
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, FieldID, msgInvalidPostID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Get(request.Context(), requestutil.Identity(request), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "", respond.Fields{FieldPost: post})
}

// # Write Endpoints

type writeRequest struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	RemoveImage bool   `json:"remove_image"`
}

/*
decodeWrite reads title, content, remove_image and the optional image file.

The returned closer must be called once the service is done with the upload.
*/
func (handler *Handler) decodeWrite(writer http.ResponseWriter, request *http.Request) (WriteInput, func(), error) {
	noop := func() {}

	if !requestutil.IsForm(request) {
		var body writeRequest
		if err := requestutil.DecodeJSON(writer, request, &body); err != nil {
			return WriteInput{}, noop, err
		}
		return WriteInput{Title: body.Title, Content: body.Content, RemoveImage: body.RemoveImage}, noop, nil
	}

	request.Body = http.MaxBytesReader(writer, request.Body, handler.maxUpload+formOverhead)
	if err := requestutil.ParseForm(request, handler.maxUpload+formOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return WriteInput{}, noop, validate.Invalid(FieldImage, fmt.Sprintf("File too large. Max size: %gMB", float64(handler.maxUpload)/(1<<20)))
		}
		return WriteInput{}, noop, validate.Invalid(FieldImage, "Invalid form submission")
	}

	input := WriteInput{
		Title:       request.PostForm.Get(FieldTitle),
		Content:     request.PostForm.Get(FieldContent),
		RemoveImage: isChecked(request.PostForm.Get(FieldRemoveImage), request.PostForm.Has(FieldRemoveImage)),
	}

	file, header, err := request.FormFile(FieldImage)
	switch {
	case errors.Is(err, http.ErrMissingFile):
		return input, noop, nil
	case err != nil:
		return WriteInput{}, noop, validate.Invalid(FieldImage, "File upload error")
	}

	input.Image = &Upload{Filename: header.Filename, Size: header.Size, Content: file}
	return input, func() { _ = file.Close() }, nil
}

// isChecked follows HTML checkbox semantics: present means on, unless explicitly false.
func isChecked(value string, present bool) bool {
	return present && value != "0" && value != "false"
}

// POST /api/posts
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	input, release, err := handler.decodeWrite(writer, request)
	defer release()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Create(request.Context(), requestutil.Identity(request), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Post created successfully!", respond.Fields{FieldPost: post})
}

// POST|PUT /api/posts/{id}
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, FieldID, msgInvalidPostID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	input, release, err := handler.decodeWrite(writer, request)
	defer release()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	post, err := handler.postService.Update(request.Context(), requestutil.Identity(request), id, input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Post updated successfully!", respond.Fields{FieldPost: post})
}

// DELETE /api/posts/{id}
func (handler *Handler) delete(writer http.ResponseWriter, request *http.Request) {
	id, err := requestutil.ID(request, FieldID, msgInvalidPostID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.postService.Delete(request.Context(), requestutil.Identity(request), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Post deleted successfully", nil)
}

