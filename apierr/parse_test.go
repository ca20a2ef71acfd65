package apierr_test

import (
	"net/http"
	"testing"

	"github.com/vaultsens/vaultsens-go/apierr"
)

const transportText = "POST https://vault.test/api/v1/files/upload resulted in a `403 Forbidden` response"

func TestParse_NonJSON_UsesFallback(t *testing.T) {
	body := []byte("gateway exploded lol")
	st := http.StatusBadGateway

	e := apierr.Parse(body, st, transportText, nil)
	if e.Status != st {
		t.Fatalf("Status=%d want %d", e.Status, st)
	}
	if e.Message != transportText {
		t.Fatalf("Message=%q want %q", e.Message, transportText)
	}
	if e.Payload != nil {
		t.Fatalf("Payload=%#v want nil", e.Payload)
	}
	if e.Raw != "gateway exploded lol" {
		t.Fatalf("Raw=%q want %q", e.Raw, "gateway exploded lol")
	}
	if e.Kind != apierr.KindUnknown {
		t.Fatalf("Kind=%q want UNKNOWN", e.Kind)
	}
}

func TestParse_NonJSON_ClassifiesFallbackText(t *testing.T) {
	// the fallback text carries the body snippet, so keywords still count
	e := apierr.Parse([]byte("Folder limit reached"), http.StatusForbidden,
		transportText+": Folder limit reached", nil)
	if e.Kind != apierr.KindFolderCountLimit {
		t.Fatalf("Kind=%q want FOLDER_COUNT_LIMIT", e.Kind)
	}
}

func TestParse_InvalidJSON(t *testing.T) {
	e := apierr.Parse([]byte("{oops"), http.StatusInternalServerError, "", nil)
	if e.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("Message=%q want status text", e.Message)
	}
	if e.Payload != nil {
		t.Fatalf("Payload should be nil for invalid JSON, got %#v", e.Payload)
	}
	if e.Raw != "{oops" {
		t.Fatalf("Raw=%q want %q", e.Raw, "{oops")
	}
}

func TestParse_JSONMessage(t *testing.T) {
	body := []byte(`{"message":"Storage limit exceeded","statusCode":413,"error":"Payload Too Large"}`)
	st := http.StatusRequestEntityTooLarge

	e := apierr.Parse(body, st, transportText, nil)
	if e.Message != "Storage limit exceeded" {
		t.Fatalf("Message=%q", e.Message)
	}
	if e.Kind != apierr.KindStorageLimit {
		t.Fatalf("Kind=%q want STORAGE_LIMIT", e.Kind)
	}
	if e.Reason != "Payload Too Large" {
		t.Fatalf("Reason=%q", e.Reason)
	}
	obj, ok := e.Payload.(map[string]any)
	if !ok || obj["statusCode"] != float64(413) {
		t.Fatalf("Payload=%#v", e.Payload)
	}
}

func TestParse_JSONMessageList_IsJoined(t *testing.T) {
	body := []byte(`{"message":["name must be a string"," parentId must be a UUID ",42],"error":"Bad Request"}`)
	e := apierr.Parse(body, http.StatusBadRequest, transportText, nil)
	if want := "name must be a string; parentId must be a UUID"; e.Message != want {
		t.Fatalf("Message=%q want %q", e.Message, want)
	}
}

func TestParse_JSONWithoutMessage_KeepsPayload(t *testing.T) {
	body := []byte(`{"detail":"nope"}`)
	e := apierr.Parse(body, http.StatusNotFound, transportText, nil)
	if e.Message != transportText {
		t.Fatalf("Message=%q want fallback", e.Message)
	}
	if e.Kind != apierr.KindNotFound {
		t.Fatalf("Kind=%q want NOT_FOUND", e.Kind)
	}
	if obj, ok := e.Payload.(map[string]any); !ok || obj["detail"] != "nope" {
		t.Fatalf("Payload=%#v", e.Payload)
	}
}

func TestParse_StringMessage_KeptVerbatim(t *testing.T) {
	e := apierr.Parse([]byte(`{"message":"","error":"Forbidden"}`), http.StatusForbidden,
		"DELETE https://vault.test/api/v1/folders/x resulted in a `403 Forbidden` response", nil)
	if e.Message != "" {
		t.Fatalf("Message=%q want empty", e.Message)
	}
	if e.Kind != apierr.KindUnknown {
		t.Fatalf("Kind=%q want UNKNOWN (fallback text must not be classified)", e.Kind)
	}
	if e.Error() != http.StatusText(http.StatusForbidden) {
		t.Fatalf("Error()=%q want status text", e.Error())
	}

	e = apierr.Parse([]byte(`{"message":"  Invalid OTP code  "}`), http.StatusBadRequest, transportText, nil)
	if e.Message != "  Invalid OTP code  " {
		t.Fatalf("Message=%q want untrimmed", e.Message)
	}
	if e.Kind != apierr.KindInvalidOTP {
		t.Fatalf("Kind=%q want INVALID_OTP", e.Kind)
	}
}

func TestParse_EmptyMessageList_FallsBack(t *testing.T) {
	e := apierr.Parse([]byte(`{"message":[]}`), http.StatusBadRequest, transportText, nil)
	if e.Message != transportText {
		t.Fatalf("Message=%q want fallback", e.Message)
	}
}

func TestParse_JSONArrayPayload(t *testing.T) {
	e := apierr.Parse([]byte(`[{"message":"ignored"}]`), http.StatusBadRequest, transportText, nil)
	if _, ok := e.Payload.([]any); !ok {
		t.Fatalf("Payload=%#v want []any", e.Payload)
	}
	if e.Message != transportText {
		t.Fatalf("Message=%q want fallback (no top-level message)", e.Message)
	}
}

func TestParse_TrimsRaw(t *testing.T) {
	e := apierr.Parse([]byte("   {\"message\":\"oops\"}  \n"), 400, "", nil)
	if e.Raw != `{"message":"oops"}` {
		t.Fatalf("Raw=%q not trimmed as expected", e.Raw)
	}
}
