package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"movie-catalog/internal/catalog"
)

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    interface{}
		expected string
	}{
		{"Simple map", map[string]string{"status": "ok"}, `{"status":"ok"}`},
		{"Empty slice", []string{}, `[]`},
		{"Null", nil, `null`},
		{"Cyrillic", map[string]string{"title": "Брат"}, `{"title":"Брат"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeJSON(w, tt.input)

			body := strings.TrimSuffix(w.Body.String(), "\n")
			if body != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, body)
			}
		})
	}
}

func TestWriteJSONHandlesInvalidTypes(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	// Channels cannot be encoded; the error is logged, not panicked.
	writeJSON(w, make(chan int))
}

func TestWriteJSONError(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	writeJSONError(w, "boom", http.StatusTeapot)

	if w.Code != http.StatusTeapot {
		t.Errorf("status = %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := strings.TrimSuffix(w.Body.String(), "\n")
	if body != `{"success":false,"error":"boom"}` {
		t.Errorf("body = %s", body)
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: movie x", catalog.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad year", catalog.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: a.mkv", catalog.ErrDuplicate), http.StatusConflict},
		{fmt.Errorf("%w: watched root", catalog.ErrEnvironment), http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestFormValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    string
		set     bool
		wantErr bool
	}{
		{`"1999"`, "1999", true, false},
		{`1999`, "1999", true, false},
		{`7.5`, "7.5", true, false},
		{`""`, "", true, false},
		{`null`, "", false, false},
		{`true`, "", false, true},
		{`{}`, "", false, true},
	}
	for _, tt := range tests {
		var f formValue
		err := json.Unmarshal([]byte(tt.input), &f)
		if (err != nil) != tt.wantErr {
			t.Errorf("Unmarshal(%s) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if f.value != tt.want || f.set != tt.set {
			t.Errorf("Unmarshal(%s) = %+v, want %q set=%v", tt.input, f, tt.want, tt.set)
		}
	}
}

func TestDecodeBody_Invalid(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	var v ingestBody
	err := decodeBody(httptest.NewRecorder(), req, &v)
	if !errors.Is(err, catalog.ErrValidation) {
		t.Errorf("decodeBody() error = %v, want ErrValidation", err)
	}
}
