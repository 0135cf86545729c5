package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/leviathan-hq/larry/internal/adapters/http/api"
	service "github.com/leviathan-hq/larry/internal/app"
	"github.com/leviathan-hq/larry/internal/domain/ledger"
	"github.com/leviathan-hq/larry/internal/domain/report"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing

type mockDependencies struct {
	seen    map[string]bool
	touched []string

	sampleOut service.SampleOutcome
	sampleErr error
	awardOut  service.AwardOutcome
	awardErr  error
	squadOut  service.SquadOutcome
	squadErr  error
	statsView service.StatsView
	statsErr  error
	report    report.Report
	reportErr error
	names     []string

	lastNewTotal int
	lastSlots    []ledger.AwardSlot
	lastSquadID  string
	lastPrefix   string
}

func (m *mockDependencies) SeenAndRecord(ctx context.Context, id string) bool {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[id] {
		return true
	}
	m.seen[id] = true
	return false
}

func (m *mockDependencies) Unrecord(ctx context.Context, id string) {
	if m.seen != nil {
		delete(m.seen, id)
	}
}

func (m *mockDependencies) Size() int64 {
	return int64(len(m.seen))
}

func (m *mockDependencies) Touch(ctx context.Context, id string) {
	m.touched = append(m.touched, id)
}

func (m *mockDependencies) LogSamples(ctx context.Context, actorID, targetID string, newTotal int) (service.SampleOutcome, error) {
	m.lastNewTotal = newTotal
	return m.sampleOut, m.sampleErr
}

func (m *mockDependencies) GrantAwards(ctx context.Context, actorID, targetID string, slots []ledger.AwardSlot) (service.AwardOutcome, error) {
	m.lastSlots = slots
	return m.awardOut, m.awardErr
}

func (m *mockDependencies) AssignSquad(ctx context.Context, actorID, targetID, squadID string) (service.SquadOutcome, error) {
	m.lastSquadID = squadID
	return m.squadOut, m.squadErr
}

func (m *mockDependencies) ViewStats(ctx context.Context, targetID string) (service.StatsView, error) {
	return m.statsView, m.statsErr
}

func (m *mockDependencies) FreedomIndex(ctx context.Context) (report.Report, error) {
	return m.report, m.reportErr
}

func (m *mockDependencies) AwardNames(ctx context.Context, prefix string) []string {
	m.lastPrefix = prefix
	return m.names
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newTestMux(deps *mockDependencies) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}})
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func postJSON(mux *http.ServeMux, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func get(mux *http.ServeMux, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{}
		mux := newTestMux(deps)

		Convey("Then the health endpoint should be accessible", func() {
			w := get(mux, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And the stats endpoint should be accessible", func() {
			w := get(mux, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "started")
		})

		Convey("And unknown paths should 404", func() {
			w := get(mux, "/nope")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestSamplesHandler(t *testing.T) {
	Convey("Given a samples endpoint", t, func() {
		deps := &mockDependencies{
			sampleOut: service.SampleOutcome{
				TargetID:     "diver-1",
				CurrentTotal: 150,
				Gain:         ledger.Gain{Delta: 50, CreditsGained: 5, TotalSamples: 150, FreedomLevel: 150, SuperCredits: 5},
			},
		}
		mux := newTestMux(deps)

		Convey("When logging samples for oneself", func() {
			w := postJSON(mux, "/samples",
				`{"interaction_id":"i-1","actor_id":"diver-1","target_id":"diver-1","new_total":150}`)

			Convey("Then the mutation is applied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)

				var resp struct {
					Status  string                `json:"status"`
					Outcome service.SampleOutcome `json:"outcome"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Status, ShouldEqual, "applied")
				So(resp.Outcome.CurrentTotal, ShouldEqual, 150)
				So(resp.Outcome.Gain.Delta, ShouldEqual, 50)
				So(deps.lastNewTotal, ShouldEqual, 150)
			})

			Convey("And replaying the same interaction reports a duplicate", func() {
				replay := postJSON(mux, "/samples",
					`{"interaction_id":"i-1","actor_id":"diver-1","target_id":"diver-1","new_total":150}`)
				So(replay.Code, ShouldEqual, http.StatusOK)
				So(replay.Body.String(), ShouldContainSubstring, `"status":"duplicate"`)
			})
		})

		Convey("When logging for someone else without authorization", func() {
			w := postJSON(mux, "/samples",
				`{"interaction_id":"i-2","actor_id":"diver-1","target_id":"diver-2","new_total":150}`)

			Convey("Then the request is forbidden", func() {
				So(w.Code, ShouldEqual, http.StatusForbidden)
				So(w.Body.String(), ShouldContainSubstring, "not_authorized")
			})
		})

		Convey("When logging for someone else with authorization", func() {
			w := postJSON(mux, "/samples",
				`{"interaction_id":"i-3","actor_id":"diver-1","target_id":"diver-2","new_total":150,"authorized":true}`)

			Convey("Then the mutation is applied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"applied"`)
			})
		})

		Convey("When the engine rejects the total", func() {
			deps.sampleErr = ledger.ErrNotAnIncrease

			w := postJSON(mux, "/samples",
				`{"interaction_id":"i-4","actor_id":"diver-1","target_id":"diver-1","new_total":10}`)

			Convey("Then the rejection carries a wire reason", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"rejected"`)
				So(w.Body.String(), ShouldContainSubstring, "not an increase")
			})

			Convey("And the interaction id is released for a retry", func() {
				So(deps.seen["i-4"], ShouldBeFalse)
			})
		})

		Convey("When the total is absent", func() {
			deps.sampleErr = ledger.ErrNotANumber

			w := postJSON(mux, "/samples",
				`{"interaction_id":"i-5","actor_id":"diver-1","target_id":"diver-1"}`)

			Convey("Then the handler passes a sentinel total through", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastNewTotal, ShouldEqual, -1)
				So(w.Body.String(), ShouldContainSubstring, "not a non-negative number")
			})
		})

		Convey("When the body is not JSON", func() {
			w := postJSON(mux, "/samples", `{not json`)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When required fields are missing", func() {
			w := postJSON(mux, "/samples", `{"actor_id":"diver-1","target_id":"diver-1","new_total":5}`)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missing interaction_id")
			})
		})

		Convey("When the method is not POST", func() {
			w := get(mux, "/samples")

			Convey("Then the route does not exist", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAwardsHandler(t *testing.T) {
	Convey("Given an awards endpoint", t, func() {
		deps := &mockDependencies{
			awardOut: service.AwardOutcome{
				TargetID: "diver-1",
				Applied:  1,
				Outcomes: []ledger.SlotOutcome{
					{Slot: 1, Name: "Fleet Campaign", Quantity: 2, Applied: true, RibbonCount: 2, Loyalty: 100, SuperCredits: 10},
				},
				Loyalty:      100,
				SuperCredits: 10,
			},
		}
		mux := newTestMux(deps)

		Convey("When granting awards with authorization", func() {
			w := postJSON(mux, "/awards",
				`{"interaction_id":"i-1","actor_id":"commander","target_id":"diver-1","authorized":true,
				  "awards":[{"name":"Fleet Campaign","quantity":2}]}`)

			Convey("Then the grant is applied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"applied"`)
				So(deps.lastSlots, ShouldResemble, []ledger.AwardSlot{{Name: "Fleet Campaign", Quantity: 2}})
			})

			Convey("And replaying the interaction reports a duplicate", func() {
				replay := postJSON(mux, "/awards",
					`{"interaction_id":"i-1","actor_id":"commander","target_id":"diver-1","authorized":true,
					  "awards":[{"name":"Fleet Campaign","quantity":2}]}`)
				So(replay.Body.String(), ShouldContainSubstring, `"status":"duplicate"`)
			})
		})

		Convey("When a slot has no quantity", func() {
			w := postJSON(mux, "/awards",
				`{"interaction_id":"i-2","actor_id":"commander","target_id":"diver-1","authorized":true,
				  "awards":[{"name":"Fleet Campaign"}]}`)

			Convey("Then the quantity defaults to one", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastSlots, ShouldResemble, []ledger.AwardSlot{{Name: "Fleet Campaign", Quantity: 1}})
			})
		})

		Convey("When no slot applies", func() {
			deps.awardOut = service.AwardOutcome{
				TargetID: "diver-1",
				Outcomes: []ledger.SlotOutcome{
					{Slot: 1, Name: "No Such Ribbon", Quantity: 1, Reason: ledger.SkipUnknownAward},
				},
			}

			w := postJSON(mux, "/awards",
				`{"interaction_id":"i-3","actor_id":"commander","target_id":"diver-1","authorized":true,
				  "awards":[{"name":"No Such Ribbon"}]}`)

			Convey("Then the batch reports skipped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"skipped"`)
			})
		})

		Convey("When granting without authorization", func() {
			w := postJSON(mux, "/awards",
				`{"interaction_id":"i-4","actor_id":"commander","target_id":"diver-1",
				  "awards":[{"name":"Fleet Campaign"}]}`)

			Convey("Then the request is forbidden", func() {
				So(w.Code, ShouldEqual, http.StatusForbidden)
			})
		})

		Convey("When the batch has more than five slots", func() {
			w := postJSON(mux, "/awards",
				`{"interaction_id":"i-5","actor_id":"commander","target_id":"diver-1","authorized":true,
				  "awards":[{"name":"a"},{"name":"b"},{"name":"c"},{"name":"d"},{"name":"e"},{"name":"f"}]}`)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "at most 5 award slots")
			})
		})

		Convey("When the batch is empty", func() {
			w := postJSON(mux, "/awards",
				`{"interaction_id":"i-6","actor_id":"commander","target_id":"diver-1","authorized":true,"awards":[]}`)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missing awards")
			})
		})
	})
}

func TestSquadsHandler(t *testing.T) {
	Convey("Given a squad assignment endpoint", t, func() {
		squadID := "squad-2"
		deps := &mockDependencies{
			squadOut: service.SquadOutcome{TargetID: "diver-1", SquadID: &squadID},
		}
		mux := newTestMux(deps)

		Convey("When assigning with authorization", func() {
			w := postJSON(mux, "/squads/assign",
				`{"actor_id":"commander","target_id":"diver-1","squad_id":"squad-2","authorized":true}`)

			Convey("Then the assignment is applied", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"status":"applied"`)
				So(w.Body.String(), ShouldContainSubstring, `"squad_id":"squad-2"`)
				So(deps.lastSquadID, ShouldEqual, "squad-2")
			})
		})

		Convey("When assigning to an unknown squad", func() {
			deps.squadErr = service.ErrUnknownSquad

			w := postJSON(mux, "/squads/assign",
				`{"actor_id":"commander","target_id":"diver-1","squad_id":"squad-99","authorized":true}`)

			Convey("Then the request is rejected with unknown_squad", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "unknown_squad")
			})
		})

		Convey("When assigning without authorization", func() {
			w := postJSON(mux, "/squads/assign",
				`{"actor_id":"commander","target_id":"diver-1","squad_id":"squad-2"}`)

			Convey("Then the request is forbidden", func() {
				So(w.Code, ShouldEqual, http.StatusForbidden)
			})
		})

		Convey("When squad_id is missing", func() {
			w := postJSON(mux, "/squads/assign",
				`{"actor_id":"commander","target_id":"diver-1","authorized":true}`)

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(w.Body.String(), ShouldContainSubstring, "missing squad_id")
			})
		})
	})
}

func TestMembersHandler(t *testing.T) {
	Convey("Given a member stats endpoint", t, func() {
		deps := &mockDependencies{
			statsView: service.StatsView{TargetID: "diver-1", Created: false},
		}
		mux := newTestMux(deps)

		Convey("When fetching a member", func() {
			w := get(mux, "/members/diver-1")

			Convey("Then the view comes back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"target_id":"diver-1"`)
			})

			Convey("And no actor is touched without actor_id", func() {
				So(deps.touched, ShouldBeEmpty)
			})
		})

		Convey("When fetching with an actor_id query", func() {
			w := get(mux, "/members/diver-1?actor_id=commander")

			Convey("Then the viewer's lastActive moves", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.touched, ShouldResemble, []string{"commander"})
			})
		})

		Convey("When the member id is empty", func() {
			w := get(mux, "/members/")

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the path has extra segments", func() {
			w := get(mux, "/members/diver-1/extra")

			Convey("Then the request is rejected", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestFreedomIndexHandler(t *testing.T) {
	Convey("Given a freedom index endpoint", t, func() {
		deps := &mockDependencies{
			report: report.Report{
				BattalionName:           "Leviathan Battalion",
				TotalServerFreedomLevel: 1200,
				ActiveHelldivers:        3,
				Status:                  "Democracy needs more defenders! Log more samples!",
				Squads: []report.SquadSummary{
					{SquadID: "squad-1", Name: "Creepers", TotalFreedom: 1200},
				},
			},
		}
		mux := newTestMux(deps)

		Convey("When fetching the report", func() {
			w := get(mux, "/freedom-index")

			Convey("Then the aggregate comes back as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, `"battalion_name":"Leviathan Battalion"`)
				So(w.Body.String(), ShouldContainSubstring, `"total_server_freedom_level":1200`)
				So(w.Body.String(), ShouldContainSubstring, `"squad_id":"squad-1"`)
			})
		})

		Convey("When using the wrong method", func() {
			w := postJSON(mux, "/freedom-index", `{}`)

			Convey("Then the route does not exist", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestAutocompleteHandler(t *testing.T) {
	Convey("Given an award-name autocomplete endpoint", t, func() {
		deps := &mockDependencies{
			names: []string{"Fleet Achievement", "Fleet Campaign"},
		}
		mux := newTestMux(deps)

		Convey("When matching with a prefix", func() {
			w := get(mux, "/awards/names?prefix=fleet")

			Convey("Then the names come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastPrefix, ShouldEqual, "fleet")

				var resp struct {
					Names []string `json:"names"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &resp), ShouldBeNil)
				So(resp.Names, ShouldResemble, []string{"Fleet Achievement", "Fleet Campaign"})
			})
		})
	})
}
