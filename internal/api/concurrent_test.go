package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"
)

func TestConcurrent_TranslateDuringPush(t *testing.T) {
	srv, eng := newTestServer(t, Options{})
	if _, err := eng.LoadRuleTable(testTable); err != nil {
		t.Fatal(err)
	}
	h := srv.Router()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				rr := do(t, h, http.MethodPost, "/v1/translate", `{"text":"가나"}`, nil)
				if rr.Code != http.StatusOK {
					t.Errorf("translate: status %d", rr.Code)
					return
				}
				var resp translateResponse
				if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
					t.Errorf("decode: %v", err)
					return
				}
				// one of the two tables pushed below, never a mix
				if resp.Output != "A" && resp.Output != "B" {
					t.Errorf("Output = %q", resp.Output)
					return
				}
			}
		}()
	}

	for i := 0; i < 10; i++ {
		body := testTable
		if i%2 == 1 {
			body = "가나,B\n"
		}
		if rr := do(t, h, http.MethodPut, "/v1/rules", body, adminAuth); rr.Code != http.StatusOK {
			t.Errorf("push %d: status %d", i, rr.Code)
		}
	}
	wg.Wait()
}
