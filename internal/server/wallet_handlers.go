package server

import (
	"encoding/base64"

	"github.com/gofiber/fiber/v2"

	"funprofile/internal/models"
)

type walletSendRequest struct {
	ToAddress string  `json:"to_address"`
	Amount    float64 `json:"amount"`
	Token     string  `json:"token"`
}

func (s *Server) handleWalletSend(c *fiber.Ctx) error {
	var req walletSendRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}

	result, err := s.walletService.SimulateSend(c.UserContext(), currentUserID(c), req.ToAddress, req.Amount, req.Token)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(result)
}

func (s *Server) handleWalletHistory(c *fiber.Ctx) error {
	txs, err := s.walletService.History(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"transactions": txs})
}

func (s *Server) handleWalletContacts(c *fiber.Ctx) error {
	contacts, err := s.walletService.Contacts(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{"contacts": contacts})
}

type walletContactRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

func (s *Server) handleWalletAddContact(c *fiber.Ctx) error {
	var req walletContactRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("invalid request body"))
	}
	contact, err := s.walletService.AddContact(c.UserContext(), currentUserID(c), req.Name, req.Address)
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(contact)
}

func (s *Server) handleWalletReceive(c *fiber.Ctx) error {
	info, err := s.walletService.Receive(c.UserContext(), currentUserID(c))
	if err != nil {
		return respondServiceError(c, err)
	}
	return c.JSON(fiber.Map{
		"address":    info.Address,
		"chain_name": info.ChainName,
		"chain_id":   info.ChainID,
		"qr_png_b64": base64.StdEncoding.EncodeToString(info.QRCodePNG),
	})
}
