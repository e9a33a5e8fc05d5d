package server

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"funprofile/internal/models"
	"funprofile/internal/validation"
)

func (s *Server) handleGetProfile(c *fiber.Ctx) error {
	userID, written := parseID(c, "userId")
	if written {
		return nil
	}
	profile, err := s.profileService.Get(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(profile)
}

func (s *Server) handleGetUserPosts(c *fiber.Ctx) error {
	userID, written := parseID(c, "userId")
	if written {
		return nil
	}
	page, limit := parsePagination(c)
	posts, err := s.postService.UserPosts(c.UserContext(), userID, page, limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"posts": posts, "page": page, "limit": limit})
}

type updateProfileRequest struct {
	Username      *string `json:"username"`
	Bio           *string `json:"bio"`
	WalletAddress *string `json:"wallet_address"`
}

func (s *Server) handleUpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	userID := currentUserID(c)
	profile, err := s.profileService.Get(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	if req.Username != nil {
		profile, err = s.profileService.UpdateUsername(c.UserContext(), userID, *req.Username)
		if err != nil {
			return respondServiceError(c, err)
		}
	}
	if req.Bio != nil {
		profile, err = s.profileService.UpdateBio(c.UserContext(), userID, *req.Bio)
		if err != nil {
			return respondServiceError(c, err)
		}
	}
	if req.WalletAddress != nil {
		if err := validation.ValidateWalletAddress(*req.WalletAddress); err != nil {
			return models.RespondWithError(c, fiber.StatusBadRequest, models.NewValidationError(err.Error()))
		}
		profile, err = s.profileService.SetWalletAddress(c.UserContext(), userID, *req.WalletAddress)
		if err != nil {
			return respondServiceError(c, err)
		}
	}
	return c.JSON(profile)
}

func (s *Server) handleReplaceAvatar(c *fiber.Ctx) error {
	fh, err := c.FormFile("avatar")
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("avatar file is required"))
	}
	f, err := readUpload(fh)
	if err != nil {
		return respondServiceError(c, err)
	}

	url, err := s.profileService.ReplaceAvatar(c.UserContext(), currentUserID(c), f)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"avatar_url": url})
}

func (s *Server) handleHonorBoard(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	profiles, err := s.profileService.HonorBoard(c.UserContext(), limit)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"profiles": profiles})
}
