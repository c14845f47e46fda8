package remotesvc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incluso/backend/core/school"
	"github.com/incluso/backend/core/user"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &Client{baseURL: srv.URL, http: srv.Client(), timeout: 2 * time.Second}
}

func writeJSON(t *testing.T, w http.ResponseWriter, v interface{}) {
	t.Helper()
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("writeJSON() failed: %v", err)
	}
}

func Test_Client_request_errors(t *testing.T) {
	t.Run("non-2xx carries the body message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"registro inválido"}`))
		})

		_, err := c.ListStudents(context.Background())
		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusBadRequest, reqErr.Status)
		assert.Equal(t, "registro inválido", reqErr.Message)
		assert.Contains(t, reqErr.Body, "registro inválido")
	})

	t.Run("error body without a known key falls back to status text", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte(`<html>oops</html>`))
		})

		_, err := c.ListStudents(context.Background())
		var reqErr *RequestError
		require.ErrorAs(t, err, &reqErr)
		assert.Equal(t, http.StatusText(http.StatusInternalServerError), reqErr.Message)
	})

	t.Run("deadline becomes a TimeoutError", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		})
		c.timeout = 20 * time.Millisecond

		_, err := c.ListStudents(context.Background())
		var tErr *TimeoutError
		require.ErrorAs(t, err, &tErr)
		assert.Equal(t, http.StatusRequestTimeout, tErr.Status)
	})

	t.Run("IsNotFound", func(t *testing.T) {
		assert.True(t, IsNotFound(&RequestError{Status: http.StatusNotFound}))
		assert.False(t, IsNotFound(&RequestError{Status: http.StatusBadRequest}))
		assert.False(t, IsNotFound(nil))
	})
}

func Test_body_List_envelopes(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantLen int
		wantErr bool
	}{
		{name: "bare array", raw: `[{"id":"1"},{"id":"2"}]`, wantLen: 2},
		{name: "value envelope", raw: `{"value":[{"id":"1"}]}`, wantLen: 1},
		{name: "data envelope", raw: `{"data":[{"id":"1"}]}`, wantLen: 1},
		{name: "collection envelope", raw: `{"students":[{"id":"1"}]}`, wantLen: 1},
		{name: "empty array", raw: `[]`, wantLen: 0},
		{name: "non-object entries are skipped", raw: `[{"id":"1"},"lol",3]`, wantLen: 1},
		{name: "unrecognized object shape", raw: `{"items":[{"id":"1"}]}`, wantErr: true},
		{name: "scalar", raw: `42`, wantErr: true},
		{name: "not JSON", raw: `lol`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := body{raw: []byte(tt.raw)}.List("students")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, records, tt.wantLen)
		})
	}
}

func Test_Client_ListStudents(t *testing.T) {
	t.Run("normalizes numeric ids and dates", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/students", r.URL.Path)
			_, _ = w.Write([]byte(`{"data":[
				{"id":7,"name":"Ana Beatriz Lima","birthDate":"2012-03-14","createdAt":"2024-01-10T08:30:00Z"},
				{"_id":"abc","name":"Pedro Henrique Costa"}
			]}`))
		})

		students, err := c.ListStudents(context.Background())
		require.NoError(t, err)
		require.Len(t, students, 2)
		assert.Equal(t, "7", students[0].ID)
		assert.Equal(t, "2012-03-14", students[0].BirthDate)
		assert.Equal(t, time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC), students[0].CreatedAt)
		assert.Equal(t, "abc", students[1].ID)
	})

	t.Run("404 is an empty set", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		students, err := c.ListStudents(context.Background())
		require.NoError(t, err)
		assert.Nil(t, students)
	})
}

func Test_Client_CreateStudent(t *testing.T) {
	t.Run("wrapped record", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			var sent map[string]interface{}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&sent))
			assert.Equal(t, "Ana Beatriz Lima", sent["name"])
			_, _ = w.Write([]byte(`{"student":{"id":101,"name":"Ana Beatriz Lima"}}`))
		})

		st, err := c.CreateStudent(context.Background(), school.Student{Name: "Ana Beatriz Lima"})
		require.NoError(t, err)
		assert.Equal(t, "101", st.ID)
	})

	t.Run("flat record", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"id":"s-1","name":"Ana Beatriz Lima"}`))
		})

		st, err := c.CreateStudent(context.Background(), school.Student{Name: "Ana Beatriz Lima"})
		require.NoError(t, err)
		assert.Equal(t, "s-1", st.ID)
	})
}

func Test_Client_nestedPathRetry(t *testing.T) {
	t.Run("update report retries the nested path", func(t *testing.T) {
		var paths []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/reports/r1" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{}`))
		})

		err := c.UpdateReport(context.Background(), school.Report{ID: "r1", StudentID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"/reports/r1", "/reports/s1/r1"}, paths)
	})

	t.Run("update adaptation retries the nested path", func(t *testing.T) {
		var paths []string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			paths = append(paths, r.URL.Path)
			if r.URL.Path == "/adaptations/a1" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte(`{}`))
		})

		err := c.UpdateAdaptation(context.Background(), school.Adaptation{ID: "a1", StudentID: "s1"})
		require.NoError(t, err)
		assert.Equal(t, []string{"/adaptations/a1", "/adaptations/s1/a1"}, paths)
	})

	t.Run("delete adaptation already gone on both paths", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		assert.NoError(t, c.DeleteAdaptation(context.Background(), "s1", "a1"))
	})

	t.Run("non-404 failures are not retried", func(t *testing.T) {
		var calls int
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		})

		err := c.UpdateAdaptation(context.Background(), school.Adaptation{ID: "a1", StudentID: "s1"})
		assert.Error(t, err)
		assert.Equal(t, 1, calls)
	})
}

func Test_Client_FetchStudentReport(t *testing.T) {
	t.Run("full aggregate shape", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/reports/s1", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"student":{"id":"s1","name":"Ana Beatriz Lima"},
				"adaptations":[{"id":"a1","studentId":"s1","description":"Tempo estendido"}],
				"reports":[{"id":"r1","studentId":"s1","subject":"Matemática","result":"positivo"}]
			}`))
		})

		agg, err := c.FetchStudentReport(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "Ana Beatriz Lima", agg.Student.Name)
		require.Len(t, agg.Adaptations, 1)
		require.Len(t, agg.Reports, 1)
		assert.Equal(t, school.ResultPositive, agg.Reports[0].Result)
	})

	t.Run("bare report list is classified and completed in parallel", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/reports/s1":
				_, _ = w.Write([]byte(`[{"id":"r1","studentId":"s1","subject":"Matemática","result":"positivo"}]`))
			case "/students/s1":
				_, _ = w.Write([]byte(`{"id":"s1","name":"Ana Beatriz Lima"}`))
			case "/adaptations/s1":
				_, _ = w.Write([]byte(`[{"id":"a1","studentId":"s1","description":"Tempo estendido"}]`))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		})

		agg, err := c.FetchStudentReport(context.Background(), "s1")
		require.NoError(t, err)
		assert.Equal(t, "s1", agg.Student.ID)
		require.Len(t, agg.Reports, 1) // from the classified list, not refetched
		assert.Equal(t, "r1", agg.Reports[0].ID)
		require.Len(t, agg.Adaptations, 1)
	})

	t.Run("failed follow-ups degrade to empty", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path == "/reports/s1" {
				_, _ = w.Write([]byte(`[{"id":"r1","studentId":"s1","result":"neutro"}]`))
				return
			}
			w.WriteHeader(http.StatusInternalServerError)
		})

		agg, err := c.FetchStudentReport(context.Background(), "s1")
		require.NoError(t, err)
		assert.Empty(t, agg.Student.ID)
		assert.Empty(t, agg.Adaptations)
		require.Len(t, agg.Reports, 1)
	})

	t.Run("404 is an empty aggregate", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})

		agg, err := c.FetchStudentReport(context.Background(), "s1")
		require.NoError(t, err)
		assert.Empty(t, agg.Student.ID)
	})
}

func Test_classifyRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []map[string]interface{}
		want    string
	}{
		{name: "empty", want: ""},
		{name: "reports", records: []map[string]interface{}{{"result": "positivo"}}, want: "reports"},
		{name: "adaptations", records: []map[string]interface{}{{"justification": "laudo"}}, want: "adaptations"},
		{name: "students by course", records: []map[string]interface{}{{"course": "Fund II"}}, want: "students"},
		{name: "students by registration", records: []map[string]interface{}{{"registrationNumber": "2024-01"}}, want: "students"},
		{name: "unknown", records: []map[string]interface{}{{"lol": 1}}, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyRecords(tt.records))
		})
	}
}

func Test_Client_SignIn(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{name: "accessToken", raw: `{"accessToken":"tk1"}`, want: "tk1"},
		{name: "access_token", raw: `{"access_token":"tk2"}`, want: "tk2"},
		{name: "token", raw: `{"token":"tk3"}`, want: "tk3"},
		{name: "no token", raw: `{"ok":true}`, wantErr: true},
		{name: "not an object", raw: `"tk"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/auth", r.URL.Path)
				var creds map[string]string
				require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
				assert.Equal(t, "professor@escola.com", creds["email"])
				_, _ = w.Write([]byte(tt.raw))
			})

			token, err := c.SignIn(context.Background(), "professor@escola.com", "prof123")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, token)
		})
	}
}

func Test_Client_Me(t *testing.T) {
	t.Run("sends the bearer token", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer tk1", r.Header.Get("Authorization"))
			writeJSON(t, w, map[string]interface{}{"id": 42, "email": "professor@escola.com", "name": "Carlos Andrade", "role": "Professor"})
		})

		usr, err := c.Me(context.Background(), "tk1")
		require.NoError(t, err)
		assert.Equal(t, "42", usr.ID)
		assert.Equal(t, user.RoleTeacher, usr.Role) // pt-BR role normalized
	})

	t.Run("malformed profile", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"ok":true}`))
		})

		_, err := c.Me(context.Background(), "tk1")
		assert.Error(t, err)
	})
}

func Test_Client_LookupByEmail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "professor+x@escola.com", r.URL.Query().Get("email"))
		_, _ = w.Write([]byte(`[
			{"id":"1","email":"coordenador@escola.com","role":"coordenadora"},
			{"id":"2","email":"PROFESSOR+X@escola.com","role":"professor"}
		]`))
	})

	usr, err := c.LookupByEmail(context.Background(), "professor+x@escola.com")
	require.NoError(t, err)
	assert.Equal(t, "2", usr.ID)
	assert.Equal(t, user.RoleTeacher, usr.Role)

	t.Run("no match", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`[]`))
		})

		_, err := c.LookupByEmail(context.Background(), "nope@escola.com")
		assert.ErrorIs(t, err, user.ErrNotFound)
	})
}
