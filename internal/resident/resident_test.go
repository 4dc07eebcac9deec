package resident

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNormalize(t *testing.T) {
	got := Normalize([]Resident{
		{CPF: "123.456.789-00", Unit: " 03/005 ", Name: " Ana Lima "},
		{CPF: " ", Unit: "", Name: "  "},
		{Unit: "101A"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, Resident{CPF: "12345678900", Unit: "03/005", Name: "Ana Lima"}, got[0])
	assert.Equal(t, "101A", got[1].Unit)
}

func TestFileProvider_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "residents.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"cpf": "123.456.789-00", "unit": "03/005", "name": "Ana Lima"},
		{"cpf": "98765432100", "unit": "12/104", "name": "Bruno Souza"}
	]`), 0o600))

	got, err := NewFileProvider(path).Residents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "12345678900", got[0].CPF)
	assert.Equal(t, "Bruno Souza", got[1].Name)
}

func TestFileProvider_CSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "residents.csv")
	csv := "cpf,unit,name\n111.222.333-44,07/012,Carla Dias\n,101A,Diego Alves\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	got, err := NewFileProvider(path).Residents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Resident{CPF: "11122233344", Unit: "07/012", Name: "Carla Dias"}, got[0])
	assert.Equal(t, Resident{Unit: "101A", Name: "Diego Alves"}, got[1])
}

func TestFileProvider_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "residents.xlsx")

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Nome", "Unidade", "CPF"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"Elisa Prado", "03/005", "555.666.777-88"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"Fábio Reis", "204B"}))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	got, err := NewFileProvider(path).Residents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, Resident{CPF: "55566677788", Unit: "03/005", Name: "Elisa Prado"}, got[0])
	assert.Equal(t, Resident{Unit: "204B", Name: "Fábio Reis"}, got[1])
}

func TestFileProvider_Errors(t *testing.T) {
	_, err := NewFileProvider(filepath.Join(t.TempDir(), "missing.json")).Residents(context.Background())
	assert.Error(t, err)

	_, err = Decode(".yaml", strings.NewReader(""))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Decode(".json", strings.NewReader("{not json"))
	assert.Error(t, err)
}

func TestPostgresProvider(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM residents").
		WillReturnRows(pgxmock.NewRows([]string{"cpf", "unit", "name"}).
			AddRow("123.456.789-00", "03/005", "Ana Lima").
			AddRow("", "12/104", "Bruno Souza"))

	got, err := NewPostgresProvider(mock).Residents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "12345678900", got[0].CPF)
	assert.Equal(t, "12/104", got[1].Unit)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresProvider_QueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery("SELECT (.+) FROM residents").WillReturnError(errors.New("connection reset"))

	_, err = NewPostgresProvider(mock).Residents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query residents")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRESTProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/residents", r.URL.Path)
		assert.Equal(t, "cpf,unit,name", r.URL.Query().Get("select"))
		assert.Equal(t, "anon-key", r.Header.Get("apikey"))
		assert.Equal(t, "Bearer anon-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"cpf":"123.456.789-00","unit":"03/005","name":"Ana Lima"},{"cpf":null,"unit":"101A","name":"Diego Alves"}]`))
	}))
	defer srv.Close()

	got, err := NewRESTProvider(srv.URL+"/", "anon-key").Residents(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "12345678900", got[0].CPF)
	assert.Equal(t, "", got[1].CPF)
}

func TestRESTProvider_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"JWT expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := NewRESTProvider(srv.URL, "k").Residents(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 401")
}

type stubProvider struct {
	calls    atomic.Int32
	roster   []Resident
	failNext bool
}

func (s *stubProvider) Residents(ctx context.Context) ([]Resident, error) {
	s.calls.Add(1)
	if s.failNext {
		return nil, errors.New("source down")
	}
	return append([]Resident(nil), s.roster...), nil
}

func TestCache_LoadsOnceAndCopies(t *testing.T) {
	src := &stubProvider{roster: []Resident{{CPF: "1", Unit: "03/005", Name: "Ana Lima"}}}
	c := NewCache(src, discardLogger())

	first, err := c.Residents(context.Background())
	require.NoError(t, err)
	first[0].Name = "mutated"

	second, err := c.Residents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ana Lima", second[0].Name)
	assert.EqualValues(t, 1, src.calls.Load())
	assert.Equal(t, 1, c.Info().Count)
}

func TestCache_RefreshFailureKeepsRoster(t *testing.T) {
	src := &stubProvider{roster: []Resident{{Unit: "03/005"}}}
	c := NewCache(src, discardLogger())
	require.NoError(t, c.Refresh(context.Background()))
	loaded := c.Info().LoadedAt

	src.failNext = true
	assert.Error(t, c.Refresh(context.Background()))

	got, err := c.Residents(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, loaded, c.Info().LoadedAt)
}

func TestCache_FirstLoadFailure(t *testing.T) {
	c := NewCache(&stubProvider{failNext: true}, discardLogger())
	_, err := c.Residents(context.Background())
	assert.Error(t, err)
}

func TestCache_Schedule(t *testing.T) {
	c := NewCache(&stubProvider{}, discardLogger())
	assert.Error(t, c.Schedule("not a spec"))

	require.NoError(t, c.Schedule("@every 1h"))
	c.Stop()
}
