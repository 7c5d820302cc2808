package codec

import (
	"strings"
	"testing"
)

type step struct {
	Action *string `json:"action"`
	Model  string  `json:"model"`
}

func TestToJSON_TrailingNewline(t *testing.T) {
	data, err := ToJSON(map[string]int{"size": 2})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "}\n") {
		t.Fatalf("got %q, want trailing newline", data)
	}
	if strings.Count(string(data), "\n") != 1 {
		t.Fatalf("got %q, want exactly one newline", data)
	}
}

func TestToJSON_NilOptionalIsNull(t *testing.T) {
	data, err := ToJSON(step{Model: "A"})
	if err != nil {
		t.Fatal(err)
	}
	if got, want := string(data), `{"action":null,"model":"A"}`+"\n"; got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestToJSON_NoHTMLEscape(t *testing.T) {
	data, err := ToJSON("<a&b>")
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != "\"<a&b>\"\n" {
		t.Fatalf("got %q", got)
	}
}

func TestToJSON_Unsupported(t *testing.T) {
	if _, err := ToJSON(make(chan int)); err == nil {
		t.Fatal("expected error for channel value")
	}
}

func TestFromJSON_RoundTrip(t *testing.T) {
	act := "inc"
	data, err := ToJSON(step{Action: &act, Model: "C"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromJSON[step](data)
	if err != nil {
		t.Fatal(err)
	}
	if got.Action == nil || *got.Action != "inc" || got.Model != "C" {
		t.Fatalf("round trip: got %+v", got)
	}
}

func TestFromJSON_Malformed(t *testing.T) {
	if _, err := FromJSON[step]([]byte("{nope")); err == nil {
		t.Fatal("expected decode error")
	}
}
