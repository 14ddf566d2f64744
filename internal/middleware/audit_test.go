package middleware

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func TestAuditLogsRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Audit(logger))
	app.Get("/balance", func(c *fiber.Ctx) error {
		c.Locals("user_id", "user-1")
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(fiber.MethodGet, "/balance", nil)
	req.Header.Set(requestIDHeader, "req-1")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log record: %v (%s)", err, buf.String())
	}
	if record["msg"] != "request completed" {
		t.Fatalf("unexpected message: %v", record["msg"])
	}
	if record["method"] != "GET" || record["path"] != "/balance" {
		t.Fatalf("missing request fields: %v", record)
	}
	if record["status"] != float64(fiber.StatusOK) {
		t.Fatalf("unexpected status: %v", record["status"])
	}
	if record["request_id"] != "req-1" {
		t.Fatalf("request id not carried: %v", record)
	}
	if record["user_id"] != "user-1" {
		t.Fatalf("user id not carried: %v", record)
	}
}

func TestAuditLogsErrorLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	app := fiber.New()
	app.Use(Audit(logger))
	app.Get("/boom", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusServiceUnavailable, "store down")
	})

	req := httptest.NewRequest(fiber.MethodGet, "/boom", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	resp.Body.Close()

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode log record: %v (%s)", err, buf.String())
	}
	if record["level"] != "ERROR" {
		t.Fatalf("expected ERROR level, got %v", record["level"])
	}
	if _, ok := record["error"]; !ok {
		t.Fatalf("expected error attr, got %v", record)
	}
}
