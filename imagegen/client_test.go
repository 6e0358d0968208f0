package imagegen

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestStabilityGenerate(t *testing.T) {
	var gotAuth, gotAccept string
	var gotFields map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parsing multipart form: %v", err)
			return
		}
		gotFields = make(map[string]string)
		for name, values := range r.MultipartForm.Value {
			gotFields[name] = values[0]
		}
		w.Write([]byte("webp-bytes"))
	}))
	defer srv.Close()

	client := NewStabilityClient(StabilityConfig{APIKey: "test-key", Endpoint: srv.URL})
	img, err := client.Generate(context.Background(), "a quiet mountain lake")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(img) != "webp-bytes" {
		t.Errorf("image: got %q", img)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("authorization: got %q", gotAuth)
	}
	if gotAccept != "image/*" {
		t.Errorf("accept: got %q", gotAccept)
	}
	want := map[string]string{
		"prompt":        "a quiet mountain lake",
		"output_format": "webp",
		"width":         "1080",
		"height":        "1920",
		"seed":          "42",
	}
	for name, value := range want {
		if gotFields[name] != value {
			t.Errorf("form field %s: got %q want %q", name, gotFields[name], value)
		}
	}
}

func TestStabilityGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"errors":["insufficient credits"]}`))
	}))
	defer srv.Close()

	client := NewStabilityClient(StabilityConfig{APIKey: "k", Endpoint: srv.URL})
	_, err := client.Generate(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error for 402 response")
	}
	if !strings.Contains(err.Error(), "402") || !strings.Contains(err.Error(), "insufficient credits") {
		t.Errorf("error should carry status and detail, got: %v", err)
	}
}

func TestStabilityGenerateEmptyPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewStabilityClient(StabilityConfig{APIKey: "k", Endpoint: srv.URL})
	if _, err := client.Generate(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for empty payload")
	}
}
