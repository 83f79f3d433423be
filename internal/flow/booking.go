// Package flow contains the workflows driven against the ticket backend: the
// multi-step booking orchestration and the lighter query, login and register
// flows. Every random decision goes through a Decider so tests can script an
// exact path; every flow swallows its own failures into a typed result so one
// bad iteration never stops an actor.
package flow

import (
	"context"
	"sort"
	"strconv"

	"github.com/tidwall/gjson"

	"ticketstorm/internal/actions"
	"ticketstorm/internal/config"
	"ticketstorm/internal/envelope"
)

const (
	// maxRouteAttempts bounds start-station resampling when the picked
	// station has no outbound route.
	maxRouteAttempts = 10

	// assuranceProbability and foodProbability match the behavior profile
	// of the seeded traffic the backend was tuned against.
	assuranceProbability = 0.5
	foodProbability      = 0.4
)

var seatClasses = []string{"1", "2"}

// CredentialSource supplies a login credential per booking attempt.
// Satisfied by both the configured pool and an external credential file.
type CredentialSource interface {
	NextCredential() (username, password string)
}

// PoolCredentials picks uniformly from the configured credential pool.
type PoolCredentials struct {
	Users  []config.Credential
	Decide Decider
}

func (p *PoolCredentials) NextCredential() (string, string) {
	if len(p.Users) == 0 {
		return "", ""
	}
	c := p.Users[p.Decide.Intn(len(p.Users))]
	return c.Username, c.Password
}

// BookingParams pins individual decision points of a booking attempt.
// Zero values mean "decide randomly", which is the load-generation default.
type BookingParams struct {
	Start string
	End   string
	Date  string

	Username string
	Password string

	SeatType  string // "1" or "2"; empty picks one at random
	Assurance string // assurance index; "0" forces none, empty decides randomly
	FoodType  *int   // nil decides randomly, pointer to 0 forces no food
}

// Booking walks the full reservation sequence: route selection, trip query
// across both train classes, login, assurance, contact, seat and food
// selection, and finally the reservation call dispatched by train class.
type Booking struct {
	Auth     *actions.Auth
	Travel   *actions.Travel
	Contacts *actions.Contacts
	Config   *config.Config
	Creds    CredentialSource
	Decide   Decider
}

// Execute runs one booking attempt end to end. It never returns a Go error:
// every abort path is folded into the result so the caller can report it and
// move on to the next iteration.
func (b *Booking) Execute(ctx context.Context, p BookingParams) Result {
	var res Result

	start, end := p.Start, p.End
	if start == "" || end == "" {
		var ok bool
		start, end, ok = b.selectRoute(start, end)
		if !ok {
			res.Error = ErrNoRoute
			return res
		}
	}

	date := p.Date
	if date == "" {
		date = b.Config.TravelDates[b.Decide.Intn(len(b.Config.TravelDates))]
	}

	// Both train classes are queried unconditionally; the station pair does
	// not predict which service has inventory.
	high, _ := b.Travel.QueryHighSpeed(ctx, start, end, date)
	normal, _ := b.Travel.QueryNormal(ctx, start, end, date)
	trips := make([]actions.Trip, 0, len(high)+len(normal))
	trips = append(trips, high...)
	trips = append(trips, normal...)
	if len(trips) == 0 {
		res.Error = ErrNoTrips
		return res
	}

	// Uniform pick over all candidates, deliberately ignoring availability:
	// sold-out trips must stay in the pool so the backend sees realistic
	// contention on popular trains.
	trip := trips[b.Decide.Intn(len(trips))]
	res.TripID = trip.ID()

	username, password := p.Username, p.Password
	if username == "" || password == "" {
		username, password = b.Creds.NextCredential()
	}
	session, out := b.Auth.Login(ctx, username, password, "")
	if !out.OK() {
		res.Error = ErrLoginFailed
		return res
	}
	if !session.Valid() {
		res.Error = ErrNoSession
		return res
	}

	assurance := p.Assurance
	if assurance == "" {
		assurance = b.selectAssurance(ctx, session.Token)
	}

	contacts, _ := b.Contacts.ByAccount(ctx, session.AccountID, session.Token)
	if len(contacts) == 0 {
		res.Error = ErrNoContacts
		return res
	}
	contact := contacts[b.Decide.Intn(len(contacts))]
	if contact.ID == "" {
		res.Error = ErrMissingContact
		return res
	}

	seat := p.SeatType
	if seat == "" {
		seat = seatClasses[b.Decide.Intn(len(seatClasses))]
	}

	order := actions.PreserveOrder{
		AccountID:  session.AccountID,
		ContactsID: contact.ID,
		TripID:     trip.ID(),
		SeatType:   seat,
		Date:       date,
		From:       start,
		To:         end,
		Assurance:  assurance,
	}

	switch {
	case p.FoodType != nil:
		order.FoodType = *p.FoodType
	case b.Decide.Float64() < foodProbability:
		menu, _ := b.Travel.Foods(ctx, date, start, end, trip.ID())
		if food, ok := b.selectFood(menu); ok {
			order.FoodType = food.Type
			order.FoodName = food.Name
			order.FoodPrice = food.Price
			order.StationName = food.Station
			order.StoreName = food.Store
		}
	}

	if trip.HighSpeed() {
		out = b.Travel.Preserve(ctx, session.Token, order)
	} else {
		out = b.Travel.PreserveOther(ctx, session.Token, order)
	}

	// Success demands an explicit status==1 acknowledgment. A bare object
	// without the envelope passes normalization for lookup endpoints, but
	// here it means the reservation service answered with something else
	// (an error page, a gateway body), not a confirmed booking.
	switch {
	case out.OK() && out.Enveloped:
		res.Success = true
		res.OrderID = orderID(out)
	case out.Message != "":
		res.Error = out.Message
	default:
		res.Error = ErrMalformed
	}
	return res
}

// selectRoute completes a partially specified station pair. A start with no
// outbound route is resampled a bounded number of times; running out of
// attempts aborts the booking rather than spinning.
func (b *Booking) selectRoute(start, end string) (string, string, bool) {
	stations := b.Config.Stations
	if end != "" {
		if start == "" {
			start = stations[b.Decide.Intn(len(stations))]
		}
		return start, end, true
	}

	if start == "" {
		start = stations[b.Decide.Intn(len(stations))]
	}
	for attempt := 0; attempt < maxRouteAttempts; attempt++ {
		if dests := b.Config.DestinationsFrom(start); len(dests) > 0 {
			return start, dests[b.Decide.Intn(len(dests))], true
		}
		start = stations[b.Decide.Intn(len(stations))]
	}
	return "", "", false
}

// selectAssurance fetches the available assurance types, then decides whether
// to buy one. The lookup happens on every booking regardless of the draw, so
// the assurance service sees its share of traffic. "0" means none; a failed
// or empty lookup behaves the same as declining.
func (b *Booking) selectAssurance(ctx context.Context, token string) string {
	types, _ := b.Travel.AssuranceTypes(ctx, token)
	if b.Decide.Float64() >= assuranceProbability || len(types) == 0 {
		return "0"
	}
	return strconv.Itoa(types[b.Decide.Intn(len(types))].Index)
}

// selectFood picks from the flat on-train list when present, otherwise walks
// the station -> store -> food map. An empty menu yields no food, silently.
func (b *Booking) selectFood(menu actions.FoodMenu) (actions.Food, bool) {
	if len(menu.TrainFoods) > 0 {
		return menu.TrainFoods[b.Decide.Intn(len(menu.TrainFoods))], true
	}

	stations := sortedKeys(menu.StoreMap)
	for len(stations) > 0 {
		i := b.Decide.Intn(len(stations))
		station := stations[i]
		stores := sortedKeys(menu.StoreMap[station])
		for len(stores) > 0 {
			j := b.Decide.Intn(len(stores))
			foods := menu.StoreMap[station][stores[j]]
			if len(foods) > 0 {
				return foods[b.Decide.Intn(len(foods))], true
			}
			stores = append(stores[:j], stores[j+1:]...)
		}
		stations = append(stations[:i], stations[i+1:]...)
	}
	return actions.Food{}, false
}

// orderID extracts a usable order identifier from the reservation payload.
// The two reservation services disagree on shape, so several spots are tried.
func orderID(out envelope.Outcome) string {
	if id := out.Field("id").String(); id != "" {
		return id
	}
	if id := out.Field("orderId").String(); id != "" {
		return id
	}
	if p := out.Payload; p.Type == gjson.String {
		return p.String()
	}
	return ""
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
