package ddc

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncode_GetVCPRequest(t *testing.T) {
	// Get VCP Feature 0x10 (brightness); well-known wire bytes.
	got, err := Encode([]byte{0x01, 0x10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x51, 0x82, 0x01, 0x10, 0xac}
	if !bytes.Equal(got, want) {
		t.Fatalf("got=%x want=%x", got, want)
	}
}

func TestEncode_TooLong(t *testing.T) {
	if _, err := Encode(make([]byte, MaxPayload+1)); err == nil {
		t.Fatalf("expected error for oversized payload")
	}
}

func TestDecode_NullResponse(t *testing.T) {
	if _, err := Decode([]byte{0x6e, 0x80, 0xbe}); !errors.Is(err, ErrNullResponse) {
		t.Fatalf("expected ErrNullResponse, got %v", err)
	}
}

func TestDecode_Payload(t *testing.T) {
	body := []byte{0x6e, 0x88, 0x02, 0x00, 0x10, 0x00, 0x00, 0x64, 0x00, 0x32}
	reply := append(append([]byte(nil), body...), checksum(hostAddrRead, body), 0xff, 0xff)

	got, err := Decode(reply)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, body[2:]) {
		t.Fatalf("payload=%x want=%x", got, body[2:])
	}
}

func TestDecode_Errors(t *testing.T) {
	cases := []struct {
		name  string
		reply []byte
		want  error
	}{
		{"short", []byte{0x6e, 0x80}, ErrMalformed},
		{"all zero", make([]byte, 8), ErrAllZero},
		{"bad source", []byte{0x6f, 0x80, 0xbf}, ErrMalformed},
		{"no length flag", []byte{0x6e, 0x01, 0x00, 0x00}, ErrMalformed},
		{"length overflow", []byte{0x6e, 0x85, 0x01, 0x02}, ErrMalformed},
		{"checksum", []byte{0x6e, 0x81, 0x01, 0x00}, ErrChecksum},
	}
	for _, tc := range cases {
		if _, err := Decode(tc.reply); !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, err)
		}
	}
}

func TestReplySize(t *testing.T) {
	if ReplySize(8) != 11 {
		t.Fatalf("ReplySize(8)=%d want=11", ReplySize(8))
	}
}

func TestCode(t *testing.T) {
	if Code(nil) != 0 {
		t.Fatalf("Code(nil)=%d", Code(nil))
	}
	_, err := Decode([]byte{0x6e, 0x80, 0xbe})
	if Code(err) != CodeNullResponse {
		t.Fatalf("Code(null)=%d", Code(err))
	}
	_, err = Decode([]byte{0x6e, 0x81, 0x01, 0x00})
	if Code(err) != CodeChecksum {
		t.Fatalf("Code(checksum)=%d", Code(err))
	}
	if Code(errors.New("other")) != CodeMalformed {
		t.Fatalf("unknown errors must map to CodeMalformed")
	}
}
