package textextract

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/fumiama/go-docx"
)

func buildDOCX(t *testing.T, paragraphs ...string) []byte {
	t.Helper()
	doc := docx.New().WithDefaultTheme()
	for _, p := range paragraphs {
		doc.AddParagraph().AddText(p)
	}
	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		t.Fatalf("write docx: %v", err)
	}
	return buf.Bytes()
}

func TestDOCX_Extract(t *testing.T) {
	data := buildDOCX(t, "Condomínio Jardim", "", "Unidade: 03/005", "Valor: R$ 412,00")

	text, err := DOCX{}.Extract(context.Background(), data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Condomínio Jardim\nUnidade: 03/005\nValor: R$ 412,00"
	if text != want {
		t.Errorf("expected %q, got %q", want, text)
	}
}

func TestDOCX_NotADocx(t *testing.T) {
	_, err := DOCX{}.Extract(context.Background(), []byte("plain text, not a zip"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}
