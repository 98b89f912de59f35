package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/venturekit/accel-api/internal/dto"
	"github.com/venturekit/accel-api/internal/handler"
	"github.com/venturekit/accel-api/internal/service"
)

type mockSlotService struct {
	lastBook      dto.SlotBookRequest
	onlyAvailable bool
	slots         []dto.SlotResponse
	err           error
}

func (m *mockSlotService) Generate(_ context.Context, _ dto.SlotGenerateRequest, _ service.AdminActor) ([]dto.SlotResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.slots, nil
}

func (m *mockSlotService) Book(_ context.Context, payload dto.SlotBookRequest) (dto.SlotResponse, error) {
	m.lastBook = payload
	if m.err != nil {
		return dto.SlotResponse{}, m.err
	}
	return m.slots[0], nil
}

func (m *mockSlotService) ListAvailable(_ context.Context, _ uint) ([]dto.SlotResponse, error) {
	m.onlyAvailable = true
	return m.slots, m.err
}

func (m *mockSlotService) ListAll(_ context.Context, _ uint) ([]dto.SlotResponse, error) {
	m.onlyAvailable = false
	return m.slots, m.err
}

func newSlotApp(svc *mockSlotService) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("user_id", uint(1))
		return c.Next()
	})
	h := handler.NewSlotHandler(svc, zerolog.New(io.Discard))
	group := app.Group("/api/slots")
	h.Register(group)
	h.RegisterAdmin(group)
	return app
}

func TestSlotHandler_BookSuccess(t *testing.T) {
	svc := &mockSlotService{slots: []dto.SlotResponse{{
		ID:           5,
		StageID:      2,
		Date:         time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
		SubmissionID: ptrUint(3),
	}}}
	app := newSlotApp(svc)

	resp := postJSON(t, app, http.MethodPost, "/api/slots/book", dto.SlotBookRequest{SubmissionID: 3, SlotID: 5})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.Equal(t, uint(5), svc.lastBook.SlotID)

	var body struct {
		Success bool             `json:"success"`
		Data    dto.SlotResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.True(t, body.Success)
	require.NotNil(t, body.Data.SubmissionID)
	require.Equal(t, uint(3), *body.Data.SubmissionID)
}

func TestSlotHandler_BookConflicts(t *testing.T) {
	cases := map[string]struct {
		err  error
		code int
	}{
		"slot taken":        {service.ErrSlotAlreadyBooked, fiber.StatusConflict},
		"submission booked": {service.ErrSubmissionAlreadyBooked, fiber.StatusConflict},
		"missing slot":      {service.ErrSlotNotFound, fiber.StatusNotFound},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := newSlotApp(&mockSlotService{err: tc.err})
			resp := postJSON(t, app, http.MethodPost, "/api/slots/book", dto.SlotBookRequest{SubmissionID: 3, SlotID: 5})
			require.Equal(t, tc.code, resp.StatusCode)
		})
	}
}

func TestSlotHandler_ListAvailableFilter(t *testing.T) {
	svc := &mockSlotService{slots: []dto.SlotResponse{{ID: 5, StageID: 2}}}
	app := newSlotApp(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/slots/stages/2?available=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.True(t, svc.onlyAvailable)
}

func TestSlotHandler_GenerateCreated(t *testing.T) {
	svc := &mockSlotService{slots: []dto.SlotResponse{{ID: 5, StageID: 2}, {ID: 6, StageID: 2}}}
	app := newSlotApp(svc)

	resp := postJSON(t, app, http.MethodPost, "/api/slots/generate", dto.SlotGenerateRequest{
		StageID: 2,
		Slots: []dto.SlotSpec{{
			Date:      time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC),
			StartTime: "09:00",
			EndTime:   "09:30",
		}},
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body struct {
		Data []dto.SlotResponse `json:"data"`
	}
	decodeResponse(t, resp, &body)
	require.Len(t, body.Data, 2)
}

func ptrUint(v uint) *uint { return &v }
