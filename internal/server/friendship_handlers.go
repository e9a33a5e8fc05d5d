package server

import (
	"github.com/gofiber/fiber/v2"

	"funprofile/internal/models"
)

func (s *Server) handleSendFriendRequest(c *fiber.Ctx) error {
	addresseeID, written := parseID(c, "userId")
	if written {
		return nil
	}

	friendship, err := s.friendships.Request(c.UserContext(), currentUserID(c), addresseeID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if friendship.Status == models.FriendshipStatusAccepted {
		s.recomputeBoth(c, friendship)
	}
	return c.Status(fiber.StatusCreated).JSON(friendship)
}

func (s *Server) handleAcceptFriendRequest(c *fiber.Ctx) error {
	requesterID, written := parseID(c, "requesterId")
	if written {
		return nil
	}

	friendship, err := s.friendships.Accept(c.UserContext(), currentUserID(c), requesterID)
	if err != nil {
		return respondServiceError(c, err)
	}
	s.recomputeBoth(c, friendship)
	return c.JSON(friendship)
}

func (s *Server) handlePendingFriendRequests(c *fiber.Ctx) error {
	pending, err := s.friendships.PendingFor(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"requests": pending})
}

func (s *Server) handleGetFriends(c *fiber.Ctx) error {
	userID, written := parseID(c, "userId")
	if written {
		return nil
	}
	ids, err := s.friendships.FriendIDs(c.UserContext(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"friend_ids": ids})
}

// recomputeBoth refreshes the friend_count honor counter on both sides of
// an accepted friendship. Failures are tolerated; the cron sweep repairs.
func (s *Server) recomputeBoth(c *fiber.Ctx, f *models.Friendship) {
	_ = s.profiles.RecomputeHonor(c.UserContext(), f.RequesterID)
	_ = s.profiles.RecomputeHonor(c.UserContext(), f.AddresseeID)
}
