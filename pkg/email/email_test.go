package email

import (
	"errors"
	"mime"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendBuildsMessage(t *testing.T) {
	s := NewSender("smtp.campus.edu", "587", "noreply@campus.edu", "secret")

	var gotAddr string
	var gotTo []string
	var gotMsg string
	s.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	require.NoError(t, s.Send("alice@campus.edu", "You were mentioned", "bob mentioned you"))
	assert.Equal(t, "smtp.campus.edu:587", gotAddr)
	assert.Equal(t, []string{"alice@campus.edu"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: You were mentioned\r\n")
	assert.Contains(t, gotMsg, "\r\n\r\nbob mentioned you\r\n")
}

func TestSendRejectsHeaderInjection(t *testing.T) {
	s := NewSender("h", "25", "f@x.y", "")
	s.send = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("send must not be called")
		return nil
	}
	assert.Error(t, s.Send("a@b.c\r\nBcc: evil@x.y", "hi", "body"))
}

func TestSendWrapsTransportError(t *testing.T) {
	s := NewSender("h", "25", "f@x.y", "")
	boom := errors.New("connection refused")
	s.send = func(string, smtp.Auth, string, []string, []byte) error { return boom }

	assert.ErrorIs(t, s.Send("a@b.c", "s", "b"), boom)
}

func TestSendEncodesNonASCIISubject(t *testing.T) {
	s := NewSender("h", "25", "f@x.y", "")
	var gotMsg string
	s.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}

	subject := "민수 mentioned you in a question: 시험 일정?"
	require.NoError(t, s.Send("a@b.c", subject, "본문"))

	var header string
	for _, line := range strings.Split(gotMsg, "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			header = strings.TrimPrefix(line, "Subject: ")
		}
	}
	assert.True(t, strings.HasPrefix(header, "=?utf-8?q?"), header)

	decoded, err := new(mime.WordDecoder).DecodeHeader(header)
	require.NoError(t, err)
	assert.Equal(t, subject, decoded)
}
