package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"ticketstorm/internal/client"
	"ticketstorm/internal/envelope"
)

const (
	tripsLeftPath       = "/api/v1/travelservice/trips/left"
	tripsLeftNormalPath = "/api/v1/travel2service/trips/left"
	assuranceTypesPath  = "/api/v1/assuranceservice/assurances/types"
	foodsPathFmt        = "/api/v1/foodservice/foods/%s/%s/%s/%s"
	foodsStatName       = "/api/v1/foodservice/foods/{date}/{start}/{end}/{tripId}"
	preservePath        = "/api/v1/preserveservice/preserve"
	preserveOtherPath   = "/api/v1/preserveotherservice/preserveOther"
)

// Trip is one candidate from a trip query. Its identity string is the
// concatenation of the train type and number ("G" + "1234" -> "G1234").
type Trip struct {
	Type   string
	Number string
}

// ID returns the trip identity string.
func (t Trip) ID() string {
	return t.Type + t.Number
}

// HighSpeed classifies the trip by its identity prefix: G and D trains are
// high-speed and book through a different reservation service than the rest.
// Classification depends only on the first character.
func (t Trip) HighSpeed() bool {
	id := t.ID()
	return strings.HasPrefix(id, "G") || strings.HasPrefix(id, "D")
}

// Assurance is one purchasable assurance type.
type Assurance struct {
	Index int
	Name  string
	Price float64
}

// Food is a normalized food record resolved from either menu shape.
type Food struct {
	Type    int
	Name    string
	Price   float64
	Station string // set only for store foods
	Store   string // set only for store foods
}

// FoodMenu holds both shapes the food service may return: a flat on-train
// list and a nested station -> store -> foods map.
type FoodMenu struct {
	TrainFoods []Food
	StoreMap   map[string]map[string][]Food
}

// Empty reports whether neither shape yielded any entries.
func (m FoodMenu) Empty() bool {
	return len(m.TrainFoods) == 0 && len(m.StoreMap) == 0
}

// PreserveOrder is the reservation request body shared by both reservation
// endpoints. The food fields ride along only when a food was selected.
type PreserveOrder struct {
	AccountID  string  `json:"accountId"`
	ContactsID string  `json:"contactsId"`
	TripID     string  `json:"tripId"`
	SeatType   string  `json:"seatType"`
	Date       string  `json:"date"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Assurance  string  `json:"assurance"`
	FoodType   int     `json:"foodType"`
	FoodName   string  `json:"foodName,omitempty"`
	FoodPrice  float64 `json:"foodPrice,omitempty"`
	StationName string `json:"stationName,omitempty"`
	StoreName   string `json:"storeName,omitempty"`
}

// Travel wraps the trip query, assurance, food and reservation endpoints.
type Travel struct {
	transport client.Transport
}

func NewTravel(t client.Transport) *Travel {
	return &Travel{transport: t}
}

// QueryHighSpeed queries G/D trips for a (start, end, date) triple.
func (tr *Travel) QueryHighSpeed(ctx context.Context, start, end, date string) ([]Trip, envelope.Outcome) {
	return tr.queryTrips(ctx, tripsLeftPath, start, end, date)
}

// QueryNormal queries the remaining train classes for a (start, end, date) triple.
func (tr *Travel) QueryNormal(ctx context.Context, start, end, date string) ([]Trip, envelope.Outcome) {
	return tr.queryTrips(ctx, tripsLeftNormalPath, start, end, date)
}

func (tr *Travel) queryTrips(ctx context.Context, path, start, end, date string) ([]Trip, envelope.Outcome) {
	out := do(ctx, tr.transport, client.Request{
		Method: "POST",
		Path:   path,
		Body: map[string]string{
			"startPlace":    start,
			"endPlace":      end,
			"departureTime": date,
		},
	})

	var trips []Trip
	for _, item := range out.Array() {
		id := item.Get("tripId")
		trip := Trip{
			Type:   id.Get("type").String(),
			Number: id.Get("number").String(),
		}
		if trip.ID() == "" {
			continue
		}
		trips = append(trips, trip)
	}
	return trips, out
}

// AssuranceTypes lists the purchasable assurance types.
func (tr *Travel) AssuranceTypes(ctx context.Context, token string) ([]Assurance, envelope.Outcome) {
	out := do(ctx, tr.transport, client.Request{
		Method:  "GET",
		Path:    assuranceTypesPath,
		Headers: bearer(token),
	})

	var types []Assurance
	for _, item := range out.Array() {
		types = append(types, Assurance{
			Index: int(item.Get("index").Int()),
			Name:  item.Get("name").String(),
			Price: item.Get("price").Float(),
		})
	}
	return types, out
}

// Foods fetches the food menu for a trip. Both menu shapes are decoded; a
// failed lookup degrades to an empty menu.
func (tr *Travel) Foods(ctx context.Context, date, start, end, tripID string) (FoodMenu, envelope.Outcome) {
	out := do(ctx, tr.transport, client.Request{
		Method: "GET",
		Path:   fmt.Sprintf(foodsPathFmt, date, start, end, tripID),
		Name:   foodsStatName,
	})

	menu := FoodMenu{}
	if !out.OK() {
		return menu, out
	}

	for _, item := range out.Field("trainFoodList").Array() {
		menu.TrainFoods = append(menu.TrainFoods, decodeFood(item, "", ""))
	}

	storeMap := out.Field("foodStoreListMap")
	if storeMap.IsObject() {
		menu.StoreMap = make(map[string]map[string][]Food)
		storeMap.ForEach(func(station, stores gjson.Result) bool {
			byStore := make(map[string][]Food)
			stores.ForEach(func(store, foods gjson.Result) bool {
				for _, item := range foods.Array() {
					byStore[store.String()] = append(byStore[store.String()],
						decodeFood(item, station.String(), store.String()))
				}
				return true
			})
			menu.StoreMap[station.String()] = byStore
			return true
		})
	}
	return menu, out
}

func decodeFood(item gjson.Result, station, store string) Food {
	foodType := int(item.Get("foodType").Int())
	if foodType == 0 {
		foodType = 1
	}
	return Food{
		Type:    foodType,
		Name:    item.Get("foodName").String(),
		Price:   item.Get("price").Float(),
		Station: station,
		Store:   store,
	}
}

// Preserve books a high-speed (G/D) trip.
func (tr *Travel) Preserve(ctx context.Context, token string, order PreserveOrder) envelope.Outcome {
	return do(ctx, tr.transport, client.Request{
		Method:  "POST",
		Path:    preservePath,
		Body:    order,
		Headers: bearer(token),
	})
}

// PreserveOther books a normal trip through the structurally near-identical
// second reservation service.
func (tr *Travel) PreserveOther(ctx context.Context, token string, order PreserveOrder) envelope.Outcome {
	return do(ctx, tr.transport, client.Request{
		Method:  "POST",
		Path:    preserveOtherPath,
		Body:    order,
		Headers: bearer(token),
	})
}
