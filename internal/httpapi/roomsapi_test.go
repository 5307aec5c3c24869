package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCreateRoom_Success(t *testing.T) {
	rs := &fakeRooms{code: "AB12CD"}
	router := NewRouter(Deps{Rooms: rs})

	req := httptest.NewRequest(http.MethodPost, "/api/create_room", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["room_id"] != "AB12CD" {
		t.Errorf("expected room_id AB12CD, got %q", body["room_id"])
	}
}

func TestCreateRoom_Failure(t *testing.T) {
	rs := &fakeRooms{createErr: errors.New("no free room code after retries")}
	router := NewRouter(Deps{Rooms: rs})

	req := httptest.NewRequest(http.MethodPost, "/api/create_room", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	env := decodeEnvelope(t, rec)
	expected := "Failed to create room, please try again."
	if env.Error != expected {
		t.Errorf("expected %q, got %q", expected, env.Error)
	}
}

func TestCheckRoom_Exists(t *testing.T) {
	rs := &fakeRooms{exists: true}
	router := NewRouter(Deps{Rooms: rs})

	req := httptest.NewRequest(http.MethodGet, "/api/check_room/AB12CD", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body["exists"] {
		t.Error("expected exists true")
	}
	if rs.checked != "AB12CD" {
		t.Errorf("expected lookup for AB12CD, got %q", rs.checked)
	}
}

func TestCheckRoom_Missing(t *testing.T) {
	rs := &fakeRooms{exists: false}
	router := NewRouter(Deps{Rooms: rs})

	req := httptest.NewRequest(http.MethodGet, "/api/check_room/ZZ99ZZ", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["exists"] {
		t.Error("expected exists false")
	}
}

func TestCheckRoom_BadFormat(t *testing.T) {
	for _, code := range []string{"abc", "TOOLONG7"} {
		router := NewRouter(Deps{Rooms: &fakeRooms{}})

		req := httptest.NewRequest(http.MethodGet, "/api/check_room/"+code, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected status 400, got %d", code, rec.Code)
		}
		env := decodeEnvelope(t, rec)
		if env.Error != "Invalid room ID format." {
			t.Errorf("%s: expected invalid format message, got %q", code, env.Error)
		}
	}
}

func TestCheckRoom_LookupErrorReadsAbsent(t *testing.T) {
	rs := &fakeRooms{exists: true, existsErr: errors.New("connection refused")}
	router := NewRouter(Deps{Rooms: rs})

	req := httptest.NewRequest(http.MethodGet, "/api/check_room/AB12CD", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	var body map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["exists"] {
		t.Error("expected exists false when the lookup fails")
	}
}
