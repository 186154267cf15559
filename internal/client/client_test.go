package client_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aanand-mishra/student-records/internal/client"
	"github.com/aanand-mishra/student-records/internal/types"
)

func ptr[T any](v T) *T { return &v }

func newClient(t *testing.T, h http.HandlerFunc) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := client.New(srv.URL+"/", "secret")
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestList_EncodesFilter(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/records" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("search") != "ali" || q.Get("minGpa") != "3.5" || q.Get("graduationYear") != "2024" ||
			q.Get("sortBy") != "gpa" || q.Get("sortOrder") != "desc" {
			t.Errorf("query = %v", q)
		}
		if q.Has("city") || q.Has("maxGpa") {
			t.Errorf("absent filters must not be sent: %v", q)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"records":[{"id":1,"name":"Alice"}]}`))
	})

	got, err := c.List(context.Background(), types.Filter{
		Search:         ptr("ali"),
		MinGPA:         ptr(3.5),
		GraduationYear: ptr(2024),
		SortBy:         "gpa",
		SortOrder:      "desc",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Alice" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestCreate_SendsTokenAndReturnsID(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("method=%s auth=%q", r.Method, r.Header.Get("Authorization"))
		}
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in["name"] != "Alice" {
			t.Errorf("body = %v, err = %v", in, err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"message":"Student created successfully","id":42}`))
	})

	id, err := c.Create(context.Background(), types.StudentInput{Name: ptr("Alice")})
	if err != nil {
		t.Fatal(err)
	}
	if id != 42 {
		t.Fatalf("id = %d", id)
	}
}

func TestUpdate_SendsOnlyPresentFields(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch || r.URL.Path != "/records/7" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if len(body) != 1 || body["city"] != "Dallas" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"message":"Student updated successfully"}`))
	})

	if err := c.Update(context.Background(), 7, types.StudentPatch{City: ptr("Dallas")}); err != nil {
		t.Fatal(err)
	}
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
		fields  int
	}{
		{"not found", http.StatusNotFound, `{"status":"error","error":"no student found with id: 9"}`, "no student found with id: 9", 0},
		{"validation", http.StatusBadRequest, `{"status":"error","error":"validation failed","fields":{"gpa":"GPA must be between 0.0 and 4.0."}}`, "validation failed", 1},
		{"plain text", http.StatusMethodNotAllowed, "Method Not Allowed\n", "Method Not Allowed", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})

			_, err := c.Get(context.Background(), 9)

			var apiErr *client.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected *client.APIError, got %v", err)
			}
			if apiErr.StatusCode != tt.status || apiErr.Message != tt.message || len(apiErr.Fields) != tt.fields {
				t.Fatalf("unexpected error: %+v", apiErr)
			}
		})
	}
}

func TestNew_RejectsBadURL(t *testing.T) {
	for _, u := range []string{"", "localhost:8082", "://nope"} {
		if _, err := client.New(u, ""); err == nil {
			t.Errorf("expected error for %q", u)
		}
	}
}
