package actions

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ticketstorm/internal/client"
)

func newTransport(t *testing.T, handler http.HandlerFunc) client.Transport {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return client.NewResty(server.URL, 5*time.Second)
}

func TestAuth_LoginSuccess(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/users/login" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["verificationCode"] != "" {
			t.Errorf("verificationCode sent when empty: %q", body["verificationCode"])
		}
		w.Write([]byte(`{"status":1,"msg":"login success","data":{"userId":"U1","username":"u","token":"T1"}}`))
	})

	session, out := NewAuth(tr).Login(context.Background(), "fdse_microservices", "111111", "")
	if !out.OK() {
		t.Fatalf("outcome: %v", out.Err())
	}
	if session.Token != "T1" || session.AccountID != "U1" {
		t.Errorf("session = %+v", session)
	}
	if !session.Valid() {
		t.Error("session should be valid")
	}
}

func TestAuth_LoginFailureDegradesToZeroSession(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"msg":"Incorrect username or password.","data":null}`))
	})

	session, out := NewAuth(tr).Login(context.Background(), "u", "wrong", "")
	if out.OK() {
		t.Fatal("expected failed outcome")
	}
	if out.Message != "Incorrect username or password." {
		t.Errorf("Message = %q", out.Message)
	}
	if session.Valid() {
		t.Errorf("session should be zero-valued, got %+v", session)
	}
}

func TestAuth_UsersBareArray(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"userId":"a","userName":"one"},{"userId":"b","userName":"two"}]`))
	})

	users, out := NewAuth(tr).Users(context.Background())
	if !out.OK() {
		t.Fatalf("outcome: %v", out.Err())
	}
	if len(users) != 2 || users[0].UserName != "one" {
		t.Errorf("users = %+v", users)
	}
}

func TestAuth_UsersDegradeOnForbidden(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	users, out := NewAuth(tr).Users(context.Background())
	if len(users) != 0 {
		t.Errorf("expected empty users, got %+v", users)
	}
	if out.OK() {
		t.Error("outcome should not be OK on 403")
	}
}

func TestTravel_QueryTrips_EnvelopeWrapped(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["startPlace"] != "shanghai" || body["endPlace"] != "suzhou" || body["departureTime"] != "2024-12-26" {
			t.Errorf("body = %v", body)
		}
		w.Write([]byte(`{"status":1,"msg":"Success","data":[{"tripId":{"type":"G","number":"1234"}}]}`))
	})

	trips, out := NewTravel(tr).QueryHighSpeed(context.Background(), "shanghai", "suzhou", "2024-12-26")
	if !out.OK() {
		t.Fatalf("outcome: %v", out.Err())
	}
	if len(trips) != 1 || trips[0].ID() != "G1234" {
		t.Fatalf("trips = %+v", trips)
	}
}

func TestTravel_QueryTrips_BareArray(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"tripId":{"type":"K","number":"134"}},{"tripId":{"type":"Z","number":"99"}}]`))
	})

	trips, _ := NewTravel(tr).QueryNormal(context.Background(), "shanghai", "taiyuan", "2024-12-26")
	if len(trips) != 2 {
		t.Fatalf("trips = %+v", trips)
	}
	if trips[0].ID() != "K134" || trips[1].ID() != "Z99" {
		t.Errorf("trips = %+v", trips)
	}
}

func TestTrip_Classification(t *testing.T) {
	tests := []struct {
		id        string
		highSpeed bool
	}{
		{"G2305", true},
		{"D105", true},
		{"K134", false},
		{"T12", false},
		{"Z99", false},
	}
	for _, tt := range tests {
		trip := Trip{Type: tt.id[:1], Number: tt.id[1:]}
		if got := trip.HighSpeed(); got != tt.highSpeed {
			t.Errorf("Trip %s: HighSpeed() = %v, want %v", tt.id, got, tt.highSpeed)
		}
	}
}

func TestTravel_AssuranceTypes(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer T" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"status":1,"msg":"Success","data":[{"index":1,"name":"Traffic Accident Assurance","price":3.0}]}`))
	})

	types, out := NewTravel(tr).AssuranceTypes(context.Background(), "T")
	if !out.OK() {
		t.Fatalf("outcome: %v", out.Err())
	}
	if len(types) != 1 || types[0].Index != 1 || types[0].Name != "Traffic Accident Assurance" {
		t.Errorf("types = %+v", types)
	}
}

func TestTravel_FoodsFlatList(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/foodservice/foods/2024-12-26/shanghai/suzhou/G1234" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"status":1,"msg":"Success","data":{"trainFoodList":[{"foodName":"rice","price":3.5,"foodType":2}],"foodStoreListMap":{}}}`))
	})

	menu, out := NewTravel(tr).Foods(context.Background(), "2024-12-26", "shanghai", "suzhou", "G1234")
	if !out.OK() {
		t.Fatalf("outcome: %v", out.Err())
	}
	if len(menu.TrainFoods) != 1 {
		t.Fatalf("menu = %+v", menu)
	}
	f := menu.TrainFoods[0]
	if f.Name != "rice" || f.Price != 3.5 || f.Type != 2 {
		t.Errorf("food = %+v", f)
	}
}

func TestTravel_FoodsStoreMap(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":1,"msg":"Success","data":{"trainFoodList":[],"foodStoreListMap":{"suzhou":{"KFC":[{"foodName":"burger","price":10}]}}}}`))
	})

	menu, _ := NewTravel(tr).Foods(context.Background(), "2024-12-26", "shanghai", "suzhou", "G1234")
	foods := menu.StoreMap["suzhou"]["KFC"]
	if len(foods) != 1 {
		t.Fatalf("menu = %+v", menu)
	}
	f := foods[0]
	if f.Name != "burger" || f.Station != "suzhou" || f.Store != "KFC" {
		t.Errorf("food = %+v", f)
	}
	if f.Type != 1 {
		t.Errorf("missing foodType should default to 1, got %d", f.Type)
	}
}

func TestTravel_FoodsDegradeOnFailure(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	menu, out := NewTravel(tr).Foods(context.Background(), "2024-12-26", "a", "b", "G1")
	if !menu.Empty() {
		t.Errorf("expected empty menu, got %+v", menu)
	}
	if out.OK() {
		t.Error("outcome should record the failure")
	}
}

func TestTravel_PreserveSendsOrder(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/preserveservice/preserve" {
			t.Errorf("path = %s", r.URL.Path)
		}
		var order map[string]any
		json.NewDecoder(r.Body).Decode(&order)
		for _, field := range []string{"accountId", "contactsId", "tripId", "seatType", "date", "from", "to", "assurance"} {
			if _, ok := order[field]; !ok {
				t.Errorf("missing field %q in order body", field)
			}
		}
		w.Write([]byte(`{"status":1,"msg":"Success","data":"Success"}`))
	})

	out := NewTravel(tr).Preserve(context.Background(), "T", PreserveOrder{
		AccountID:  "U",
		ContactsID: "C",
		TripID:     "G1234",
		SeatType:   "2",
		Date:       "2024-12-26",
		From:       "shanghai",
		To:         "suzhou",
		Assurance:  "0",
	})
	if !out.OK() {
		t.Fatalf("outcome: %v", out.Err())
	}
}

func TestContacts_ByAccount(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/contactservice/contacts/account/U1" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer T1" {
			t.Errorf("Authorization = %q", got)
		}
		w.Write([]byte(`{"status":1,"msg":"Success","data":[{"id":"C1","accountId":"U1","name":"Contacts_One","documentType":1,"documentNumber":"DocumentNumber_One","phoneNumber":"ContactsPhoneNum_One"}]}`))
	})

	contacts, out := NewContacts(tr).ByAccount(context.Background(), "U1", "T1")
	if !out.OK() {
		t.Fatalf("outcome: %v", out.Err())
	}
	if len(contacts) != 1 || contacts[0].ID != "C1" || contacts[0].DocumentType != 1 {
		t.Errorf("contacts = %+v", contacts)
	}
}

func TestContacts_EmptyOnBusinessRejection(t *testing.T) {
	tr := newTransport(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":0,"msg":"no contacts","data":null}`))
	})

	contacts, out := NewContacts(tr).ByAccount(context.Background(), "U1", "T1")
	if len(contacts) != 0 {
		t.Errorf("expected empty contacts, got %+v", contacts)
	}
	if out.OK() {
		t.Error("outcome should carry the rejection")
	}
}
