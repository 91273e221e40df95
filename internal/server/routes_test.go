package server

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestHealthHandler(t *testing.T) {
	// Create a minimal Fiber app for testing
	app := fiber.New()

	// Add health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Server is running",
		})
	})

	// Create a test HTTP request
	req, err := http.NewRequest("GET", "/health", nil)
	if err != nil {
		t.Fatalf("could not create request: %v", err)
	}

	// Perform the request
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("could not perform request: %v", err)
	}

	// Check the status code
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status OK; got %v", resp.Status)
	}

	// Check the response body
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("could not read response body: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(body, &result); err != nil {
		t.Fatalf("could not unmarshal response: %v", err)
	}

	if result["status"] != "ok" {
		t.Errorf("expected status to be 'ok'; got %v", result["status"])
	}
}

func TestBetHandler_RejectsMissingUser(t *testing.T) {
	app := fiber.New()

	// Mirror the validation layer of the bet endpoints without engines
	app.Post("/bet", func(c *fiber.Ctx) error {
		var req struct {
			TelegramID int64 `json:"telegram_id"`
			Amount     int64 `json:"bet_amount"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "Invalid request body"})
		}
		if req.TelegramID == 0 {
			return c.Status(400).JSON(fiber.Map{"error": "telegram_id is required"})
		}
		return c.JSON(fiber.Map{"success": true})
	})

	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"missing telegram id", `{"bet_amount": 100}`, 400},
		{"malformed json", `{not json`, 400},
		{"valid request", `{"telegram_id": 42, "bet_amount": 100}`, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest("POST", "/bet", strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("could not create request: %v", err)
			}
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			if err != nil {
				t.Fatalf("could not perform request: %v", err)
			}

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
