package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-booking/internal/model"
	"campus-booking/internal/service"
	"campus-booking/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, name, email, password string, role model.Role) (*model.User, error)
	loginFn    func(ctx context.Context, email, password string) (string, model.Role, error)
}

func (s *stubAuthService) Register(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
	if s.registerFn != nil {
		return s.registerFn(ctx, name, email, password, role)
	}
	return &model.User{ID: 1, Name: name, Email: email, Role: role}, nil
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (string, model.Role, error) {
	if s.loginFn != nil {
		return s.loginFn(ctx, email, password)
	}
	return "stub-token", model.RoleStudent, nil
}

type stubResourceService struct {
	createFn func(ctx context.Context, res *model.Resource, slots []string) error
	listFn   func(ctx context.Context) ([]model.Resource, error)
	searchFn func(ctx context.Context, query string) ([]model.Resource, error)
	updateFn func(ctx context.Context, res *model.Resource, slots []string) error
	deleteFn func(ctx context.Context, resourceID int64) error
	slotsFn  func(ctx context.Context, resourceID int64) ([]model.SlotAvailability, error)
}

func (s *stubResourceService) Create(ctx context.Context, res *model.Resource, slots []string) error {
	if s.createFn != nil {
		return s.createFn(ctx, res, slots)
	}
	return nil
}

func (s *stubResourceService) List(ctx context.Context) ([]model.Resource, error) {
	if s.listFn != nil {
		return s.listFn(ctx)
	}
	return nil, nil
}

func (s *stubResourceService) Search(ctx context.Context, query string) ([]model.Resource, error) {
	if s.searchFn != nil {
		return s.searchFn(ctx, query)
	}
	return nil, nil
}

func (s *stubResourceService) Update(ctx context.Context, res *model.Resource, slots []string) error {
	if s.updateFn != nil {
		return s.updateFn(ctx, res, slots)
	}
	return nil
}

func (s *stubResourceService) Delete(ctx context.Context, resourceID int64) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, resourceID)
	}
	return nil
}

func (s *stubResourceService) Slots(ctx context.Context, resourceID int64) ([]model.SlotAvailability, error) {
	if s.slotsFn != nil {
		return s.slotsFn(ctx, resourceID)
	}
	return nil, service.ErrNotFound
}

type stubBookingService struct {
	createFn     func(ctx context.Context, userID, resourceID, slotID int64) (*model.Booking, error)
	listForUser  func(ctx context.Context, userID int64) ([]model.StudentBooking, error)
	listAllFn    func(ctx context.Context) ([]model.AdminBooking, error)
	updateSlotFn func(ctx context.Context, bookingID, userID, newSlotID int64) error
	cancelFn     func(ctx context.Context, bookingID, userID int64) error
	approveFn    func(ctx context.Context, bookingID int64) error
	rejectFn     func(ctx context.Context, bookingID int64) error
	deleteFn     func(ctx context.Context, bookingID int64) error
}

func (s *stubBookingService) Create(ctx context.Context, userID, resourceID, slotID int64) (*model.Booking, error) {
	if s.createFn != nil {
		return s.createFn(ctx, userID, resourceID, slotID)
	}
	return &model.Booking{ID: 1, UserID: userID, ResourceID: resourceID, SlotID: slotID, Status: model.BookingStatusPending}, nil
}

func (s *stubBookingService) ListForUser(ctx context.Context, userID int64) ([]model.StudentBooking, error) {
	if s.listForUser != nil {
		return s.listForUser(ctx, userID)
	}
	return nil, nil
}

func (s *stubBookingService) ListAll(ctx context.Context) ([]model.AdminBooking, error) {
	if s.listAllFn != nil {
		return s.listAllFn(ctx)
	}
	return nil, nil
}

func (s *stubBookingService) UpdateSlot(ctx context.Context, bookingID, userID, newSlotID int64) error {
	if s.updateSlotFn != nil {
		return s.updateSlotFn(ctx, bookingID, userID, newSlotID)
	}
	return nil
}

func (s *stubBookingService) Cancel(ctx context.Context, bookingID, userID int64) error {
	if s.cancelFn != nil {
		return s.cancelFn(ctx, bookingID, userID)
	}
	return nil
}

func (s *stubBookingService) Approve(ctx context.Context, bookingID int64) error {
	if s.approveFn != nil {
		return s.approveFn(ctx, bookingID)
	}
	return nil
}

func (s *stubBookingService) Reject(ctx context.Context, bookingID int64) error {
	if s.rejectFn != nil {
		return s.rejectFn(ctx, bookingID)
	}
	return nil
}

func (s *stubBookingService) Delete(ctx context.Context, bookingID int64) error {
	if s.deleteFn != nil {
		return s.deleteFn(ctx, bookingID)
	}
	return nil
}

func newTestServer(auth AuthService, resources ResourceService, bookings BookingService) (*Server, *token.Manager) {
	gin.SetMode(gin.TestMode)

	if auth == nil {
		auth = &stubAuthService{}
	}
	if resources == nil {
		resources = &stubResourceService{}
	}
	if bookings == nil {
		bookings = &stubBookingService{}
	}

	tokens := token.NewManager("test-secret")
	srv := New(Config{
		Auth:      auth,
		Resources: resources,
		Bookings:  bookings,
		Tokens:    tokens,
		Logger:    zap.NewNop(),
	})

	return srv, tokens
}

func doRequest(srv *Server, method, path, bearer string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	srv.engine.ServeHTTP(w, req)
	return w
}

func signFor(t *testing.T, tokens *token.Manager, userID int64, role model.Role) string {
	t.Helper()
	signed, err := tokens.Sign(userID, role)
	require.NoError(t, err)
	return signed
}

func TestRegister(t *testing.T) {
	t.Run("missing fields", func(t *testing.T) {
		srv, _ := newTestServer(nil, nil, nil)
		w := doRequest(srv, http.MethodPost, "/register", "", gin.H{"email": "a@b.co"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		srv, _ := newTestServer(nil, nil, nil)
		w := doRequest(srv, http.MethodPost, "/register", "", gin.H{
			"name": "X", "email": "a@b.co", "password": "pw", "role": "superuser",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("duplicate email", func(t *testing.T) {
		auth := &stubAuthService{
			registerFn: func(ctx context.Context, name, email, password string, role model.Role) (*model.User, error) {
				return nil, service.ErrEmailTaken
			},
		}
		srv, _ := newTestServer(auth, nil, nil)
		w := doRequest(srv, http.MethodPost, "/register", "", gin.H{
			"name": "X", "email": "a@b.co", "password": "pw", "role": "student",
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("success", func(t *testing.T) {
		srv, _ := newTestServer(nil, nil, nil)
		w := doRequest(srv, http.MethodPost, "/register", "", gin.H{
			"name": "X", "email": "a@b.co", "password": "pw", "role": "student",
		})
		assert.Equal(t, http.StatusCreated, w.Code)
	})
}

func TestLogin(t *testing.T) {
	t.Run("bad credentials", func(t *testing.T) {
		auth := &stubAuthService{
			loginFn: func(ctx context.Context, email, password string) (string, model.Role, error) {
				return "", "", service.ErrInvalidCredentials
			},
		}
		srv, _ := newTestServer(auth, nil, nil)
		w := doRequest(srv, http.MethodPost, "/login", "", gin.H{"email": "a@b.co", "password": "nope"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("returns token and role", func(t *testing.T) {
		auth := &stubAuthService{
			loginFn: func(ctx context.Context, email, password string) (string, model.Role, error) {
				return "issued-token", model.RoleAdmin, nil
			},
		}
		srv, _ := newTestServer(auth, nil, nil)
		w := doRequest(srv, http.MethodPost, "/login", "", gin.H{"email": "a@b.co", "password": "pw"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Token string `json:"token"`
			Role  string `json:"role"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "issued-token", resp.Token)
		assert.Equal(t, "admin", resp.Role)
	})
}

func TestAuthGate(t *testing.T) {
	srv, tokens := newTestServer(nil, nil, nil)

	t.Run("missing token", func(t *testing.T) {
		w := doRequest(srv, http.MethodGet, "/api/resources", "", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		w := doRequest(srv, http.MethodGet, "/api/resources", "garbage", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		foreign := signFor(t, token.NewManager("other-secret"), 1, model.RoleStudent)
		w := doRequest(srv, http.MethodGet, "/api/resources", foreign, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("admin token on student route", func(t *testing.T) {
		admin := signFor(t, tokens, 1, model.RoleAdmin)
		w := doRequest(srv, http.MethodGet, "/api/resources", admin, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("student token on admin route", func(t *testing.T) {
		student := signFor(t, tokens, 1, model.RoleStudent)
		w := doRequest(srv, http.MethodGet, "/api/admin/bookings", student, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("student token on student route", func(t *testing.T) {
		student := signFor(t, tokens, 1, model.RoleStudent)
		w := doRequest(srv, http.MethodGet, "/api/resources", student, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestListSlots(t *testing.T) {
	resources := &stubResourceService{
		slotsFn: func(ctx context.Context, resourceID int64) ([]model.SlotAvailability, error) {
			if resourceID != 5 {
				return nil, service.ErrNotFound
			}
			return []model.SlotAvailability{
				{ID: 10, Slot: "Mon 9-10", IsAvailable: 0},
				{ID: 11, Slot: "Mon 10-11", IsAvailable: 1},
			}, nil
		},
	}
	srv, tokens := newTestServer(nil, resources, nil)
	student := signFor(t, tokens, 1, model.RoleStudent)

	t.Run("renders derived availability", func(t *testing.T) {
		w := doRequest(srv, http.MethodGet, "/api/slots/5", student, nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Success bool                     `json:"success"`
			Slots   []model.SlotAvailability `json:"slots"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.True(t, resp.Success)
		require.Len(t, resp.Slots, 2)
		assert.Equal(t, 0, resp.Slots[0].IsAvailable)
		assert.Equal(t, 1, resp.Slots[1].IsAvailable)
	})

	t.Run("no slots", func(t *testing.T) {
		w := doRequest(srv, http.MethodGet, "/api/slots/6", student, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-numeric id", func(t *testing.T) {
		w := doRequest(srv, http.MethodGet, "/api/slots/abc", student, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCreateBooking(t *testing.T) {
	t.Run("uses identity from token", func(t *testing.T) {
		var gotUserID int64
		bookings := &stubBookingService{
			createFn: func(ctx context.Context, userID, resourceID, slotID int64) (*model.Booking, error) {
				gotUserID = userID
				return &model.Booking{ID: 1, UserID: userID}, nil
			},
		}
		srv, tokens := newTestServer(nil, nil, bookings)
		student := signFor(t, tokens, 77, model.RoleStudent)

		w := doRequest(srv, http.MethodPost, "/api/bookings", student, gin.H{"resourceId": 5, "slotId": 10})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(77), gotUserID)
	})

	t.Run("missing body fields", func(t *testing.T) {
		srv, tokens := newTestServer(nil, nil, nil)
		student := signFor(t, tokens, 1, model.RoleStudent)
		w := doRequest(srv, http.MethodPost, "/api/bookings", student, gin.H{"resourceId": 5})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("slot taken", func(t *testing.T) {
		bookings := &stubBookingService{
			createFn: func(ctx context.Context, userID, resourceID, slotID int64) (*model.Booking, error) {
				return nil, service.ErrSlotTaken
			},
		}
		srv, tokens := newTestServer(nil, nil, bookings)
		student := signFor(t, tokens, 1, model.RoleStudent)
		w := doRequest(srv, http.MethodPost, "/api/bookings", student, gin.H{"resourceId": 5, "slotId": 10})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown slot", func(t *testing.T) {
		bookings := &stubBookingService{
			createFn: func(ctx context.Context, userID, resourceID, slotID int64) (*model.Booking, error) {
				return nil, service.ErrNotFound
			},
		}
		srv, tokens := newTestServer(nil, nil, bookings)
		student := signFor(t, tokens, 1, model.RoleStudent)
		w := doRequest(srv, http.MethodPost, "/api/bookings", student, gin.H{"resourceId": 5, "slotId": 10})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOwnBookingOperations(t *testing.T) {
	t.Run("foreign booking looks missing", func(t *testing.T) {
		bookings := &stubBookingService{
			updateSlotFn: func(ctx context.Context, bookingID, userID, newSlotID int64) error {
				return service.ErrNotFound
			},
			cancelFn: func(ctx context.Context, bookingID, userID int64) error {
				return service.ErrNotFound
			},
		}
		srv, tokens := newTestServer(nil, nil, bookings)
		student := signFor(t, tokens, 2, model.RoleStudent)

		w := doRequest(srv, http.MethodPut, "/api/bookings/9", student, gin.H{"newSlotId": 3})
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = doRequest(srv, http.MethodDelete, "/api/bookings/9", student, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("update requires new slot id", func(t *testing.T) {
		srv, tokens := newTestServer(nil, nil, nil)
		student := signFor(t, tokens, 2, model.RoleStudent)
		w := doRequest(srv, http.MethodPut, "/api/bookings/9", student, gin.H{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("cancel passes owner identity", func(t *testing.T) {
		var gotBookingID, gotUserID int64
		bookings := &stubBookingService{
			cancelFn: func(ctx context.Context, bookingID, userID int64) error {
				gotBookingID, gotUserID = bookingID, userID
				return nil
			},
		}
		srv, tokens := newTestServer(nil, nil, bookings)
		student := signFor(t, tokens, 8, model.RoleStudent)
		w := doRequest(srv, http.MethodDelete, "/api/bookings/15", student, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, int64(15), gotBookingID)
		assert.Equal(t, int64(8), gotUserID)
	})
}

func TestBookingDecisions(t *testing.T) {
	t.Run("approve already decided", func(t *testing.T) {
		bookings := &stubBookingService{
			approveFn: func(ctx context.Context, bookingID int64) error {
				return service.ErrNotPending
			},
		}
		srv, tokens := newTestServer(nil, nil, bookings)
		admin := signFor(t, tokens, 1, model.RoleAdmin)
		w := doRequest(srv, http.MethodPatch, "/api/admin/bookings/3/approve", admin, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("reject unknown booking", func(t *testing.T) {
		bookings := &stubBookingService{
			rejectFn: func(ctx context.Context, bookingID int64) error {
				return service.ErrNotFound
			},
		}
		srv, tokens := newTestServer(nil, nil, bookings)
		admin := signFor(t, tokens, 1, model.RoleAdmin)
		w := doRequest(srv, http.MethodPatch, "/api/admin/bookings/3/reject", admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("approve pending", func(t *testing.T) {
		srv, tokens := newTestServer(nil, nil, nil)
		admin := signFor(t, tokens, 1, model.RoleAdmin)
		w := doRequest(srv, http.MethodPatch, "/api/admin/bookings/3/approve", admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAdminResources(t *testing.T) {
	t.Run("create requires slot array", func(t *testing.T) {
		srv, tokens := newTestServer(nil, nil, nil)
		admin := signFor(t, tokens, 1, model.RoleAdmin)
		w := doRequest(srv, http.MethodPost, "/api/admin/resources", admin, gin.H{"name": "Lab A"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create passes slots through", func(t *testing.T) {
		var gotSlots []string
		resources := &stubResourceService{
			createFn: func(ctx context.Context, res *model.Resource, slots []string) error {
				gotSlots = slots
				return nil
			},
		}
		srv, tokens := newTestServer(nil, resources, nil)
		admin := signFor(t, tokens, 1, model.RoleAdmin)
		w := doRequest(srv, http.MethodPost, "/api/admin/resources", admin, gin.H{
			"name":               "Lab A",
			"description":        "Physics lab",
			"category":           "Lab",
			"availability_slots": []string{"Mon 9-10", "Mon 10-11"},
		})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []string{"Mon 9-10", "Mon 10-11"}, gotSlots)
	})

	t.Run("delete unknown resource", func(t *testing.T) {
		resources := &stubResourceService{
			deleteFn: func(ctx context.Context, resourceID int64) error {
				return service.ErrNotFound
			},
		}
		srv, tokens := newTestServer(nil, resources, nil)
		admin := signFor(t, tokens, 1, model.RoleAdmin)
		w := doRequest(srv, http.MethodDelete, "/api/admin/resources/99", admin, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("search forwards the query", func(t *testing.T) {
		var gotQuery string
		resources := &stubResourceService{
			searchFn: func(ctx context.Context, query string) ([]model.Resource, error) {
				gotQuery = query
				return []model.Resource{{ID: 1, Name: "Lab A"}}, nil
			},
		}
		srv, tokens := newTestServer(nil, resources, nil)
		admin := signFor(t, tokens, 1, model.RoleAdmin)
		w := doRequest(srv, http.MethodGet, "/api/admin/resources/search/lab", admin, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "lab", gotQuery)
	})
}
