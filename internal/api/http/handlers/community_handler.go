package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shop-service/internal/api/dto"
	"github.com/spec-kit/shop-service/internal/service"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// ProfilesHandler manages /userprofiles.
type ProfilesHandler struct {
	profiles *service.ProfileService
}

// NewProfilesHandler constructs handler.
func NewProfilesHandler(profiles *service.ProfileService) *ProfilesHandler {
	return &ProfilesHandler{profiles: profiles}
}

func (h *ProfilesHandler) List(c *fiber.Ctx) error {
	profiles, err := h.profiles.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.ProfileResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, dto.NewProfileResponse(&profiles[i]))
	}
	return c.JSON(items)
}

func (h *ProfilesHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	profile, err := h.profiles.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProfileResponse(profile))
}

func (h *ProfilesHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.Create(c.UserContext(), p.UserID(), req.Bio)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewProfileResponse(profile))
}

func (h *ProfilesHandler) Update(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.ProfileRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	profile, err := h.profiles.UpdateBio(c.UserContext(), p.UserID(), id, req.Bio)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewProfileResponse(profile))
}

func (h *ProfilesHandler) Delete(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.profiles.Delete(c.UserContext(), p.UserID(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// PostsHandler manages /posts.
type PostsHandler struct {
	posts *service.PostService
}

// NewPostsHandler constructs handler.
func NewPostsHandler(posts *service.PostService) *PostsHandler {
	return &PostsHandler{posts: posts}
}

func (h *PostsHandler) List(c *fiber.Ctx) error {
	posts, err := h.posts.List(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, dto.NewPostResponse(&posts[i]))
	}
	return c.JSON(items)
}

func (h *PostsHandler) Get(c *fiber.Ctx) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	post, err := h.posts.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPostResponse(post))
}

func (h *PostsHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.PostRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if req.Title == nil || req.Content == nil {
		return apperrors.NewValidationError("title and content are required", nil)
	}
	post, err := h.posts.Create(c.UserContext(), p.UserID(), *req.Title, *req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.NewPostResponse(post))
}

func (h *PostsHandler) Update(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var req dto.PostRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	post, err := h.posts.Update(c.UserContext(), p.UserID(), id, service.PostPatch{Title: req.Title, Content: req.Content})
	if err != nil {
		return err
	}
	return c.JSON(dto.NewPostResponse(post))
}

func (h *PostsHandler) Delete(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.posts.Delete(c.UserContext(), p.UserID(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}
