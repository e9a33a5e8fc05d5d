package server

import (
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"

	"funprofile/internal/media"
	"funprofile/internal/models"
	"funprofile/internal/service"
)

// parsePostForm reads the multipart authoring form. Text fields ride as
// form values; surviving media URLs come back under existing_urls and new
// attachments under the files field.
func parsePostForm(c *fiber.Ctx) (service.PostInput, error) {
	var in service.PostInput

	form, err := c.MultipartForm()
	if err != nil {
		return in, models.NewValidationError("expected multipart form data")
	}

	in.Content = c.FormValue("content")
	in.PrivacyLevel = c.FormValue("privacy_level")
	in.FeelingType = c.FormValue("feeling_type")
	in.FeelingText = c.FormValue("feeling_text")
	in.ExistingURLs = form.Value["existing_urls"]

	for _, fh := range form.File["files"] {
		f, err := readUpload(fh)
		if err != nil {
			return in, err
		}
		in.NewFiles = append(in.NewFiles, f)
	}
	return in, nil
}

func readUpload(fh *multipart.FileHeader) (media.File, error) {
	src, err := fh.Open()
	if err != nil {
		return media.File{}, models.NewValidationError("could not read uploaded file " + fh.Filename)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return media.File{}, models.NewValidationError("could not read uploaded file " + fh.Filename)
	}
	return media.File{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

// postResponse carries the created or updated post plus any per-file
// rejections from the batch validation.
type postResponse struct {
	Post     *models.Post `json:"post"`
	Rejected []string     `json:"rejected,omitempty"`
}

func rejectionMessages(errs []error) []string {
	if len(errs) == 0 {
		return nil
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return msgs
}

func (s *Server) handleCreatePost(c *fiber.Ctx) error {
	in, err := parsePostForm(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	post, rejected, err := s.postService.Create(c.UserContext(), currentUserID(c), in, nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(postResponse{
		Post:     post,
		Rejected: rejectionMessages(rejected),
	})
}

func (s *Server) handleUpdatePost(c *fiber.Ctx) error {
	postID, written := parseID(c, "id")
	if written {
		return nil
	}

	in, err := parsePostForm(c)
	if err != nil {
		return respondServiceError(c, err)
	}

	post, rejected, err := s.postService.Update(c.UserContext(), currentUserID(c), postID, in, nil)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(postResponse{
		Post:     post,
		Rejected: rejectionMessages(rejected),
	})
}

func (s *Server) handleDeletePost(c *fiber.Ctx) error {
	postID, written := parseID(c, "id")
	if written {
		return nil
	}
	if err := s.postService.Delete(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) handleGetFeed(c *fiber.Ctx) error {
	page, limit := parsePagination(c)
	posts, err := s.postService.Feed(c.UserContext(), currentUserID(c), page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts, "page": page, "limit": limit})
}

func (s *Server) handleGetPost(c *fiber.Ctx) error {
	postID, written := parseID(c, "id")
	if written {
		return nil
	}
	post, err := s.postService.Get(c.UserContext(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(post)
}

func (s *Server) handleGetComments(c *fiber.Ctx) error {
	postID, written := parseID(c, "id")
	if written {
		return nil
	}
	page, limit := parsePagination(c)
	comments, err := s.postService.Comments(c.UserContext(), postID, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments, "page": page, "limit": limit})
}

type commentRequest struct {
	Content string `json:"content"`
}

func (s *Server) handleAddComment(c *fiber.Ctx) error {
	postID, written := parseID(c, "id")
	if written {
		return nil
	}
	var req commentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}
	comment, err := s.postService.Comment(c.UserContext(), currentUserID(c), postID, req.Content)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(comment)
}

type reactionRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleToggleReaction(c *fiber.Ctx) error {
	postID, written := parseID(c, "id")
	if written {
		return nil
	}
	var req reactionRequest
	_ = c.BodyParser(&req)

	active, err := s.postService.React(c.UserContext(), currentUserID(c), postID, req.Type)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"active": active})
}

func (s *Server) handleAddShare(c *fiber.Ctx) error {
	postID, written := parseID(c, "id")
	if written {
		return nil
	}
	if err := s.postService.Share(c.UserContext(), currentUserID(c), postID); err != nil {
		return respondServiceError(c, err)
	}
	return c.SendStatus(fiber.StatusCreated)
}
