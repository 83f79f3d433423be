package flow

import (
	"context"

	"ticketstorm/internal/actions"
	"ticketstorm/internal/config"
	"ticketstorm/internal/gen"
)

// QueryResult is the outcome of a standalone trip query.
type QueryResult struct {
	Success bool
	Trips   []actions.Trip
	Error   string
}

// Query issues a single high-speed trip query over a random station pair.
// Unlike the booking flow it does not consult the route tables: querying a
// pair with no service is a legitimate load pattern.
type Query struct {
	Travel *actions.Travel
	Config *config.Config
	Decide Decider
}

func (q *Query) Execute(ctx context.Context, start, end, date string) QueryResult {
	stations := q.Config.Stations
	if start == "" {
		start = stations[q.Decide.Intn(len(stations))]
	}
	if end == "" {
		end = start
		// A single-station pool cannot yield a distinct pair; keep the
		// degenerate query rather than looping forever.
		if len(stations) > 1 {
			for end == start {
				end = stations[q.Decide.Intn(len(stations))]
			}
		}
	}
	if date == "" {
		date = q.Config.TravelDates[q.Decide.Intn(len(q.Config.TravelDates))]
	}

	trips, out := q.Travel.QueryHighSpeed(ctx, start, end, date)
	if !out.OK() {
		return QueryResult{Error: out.Err().Error()}
	}
	if len(trips) == 0 {
		return QueryResult{Error: ErrNoTrips}
	}
	return QueryResult{Success: true, Trips: trips}
}

// LoginResult is the outcome of a standalone login.
type LoginResult struct {
	Success bool
	Token   string
	Error   string
}

// Login authenticates with a pooled credential and discards the session.
type Login struct {
	Auth   *actions.Auth
	Creds  CredentialSource
	Decide Decider
}

func (l *Login) Execute(ctx context.Context) LoginResult {
	username, password := l.Creds.NextCredential()
	session, out := l.Auth.Login(ctx, username, password, "")
	if !out.OK() {
		return LoginResult{Error: ErrLoginFailed}
	}
	if !session.Valid() {
		return LoginResult{Error: ErrNoSession}
	}
	return LoginResult{Success: true, Token: session.Token}
}

// RegisterResult is the outcome of a user-creation round trip.
type RegisterResult struct {
	Success  bool
	UserName string
	Error    string
}

// Register logs in as the configured admin and creates a fresh user with
// generated identity data. Used to grow the credential population the other
// flows draw on.
type Register struct {
	Auth   *actions.Auth
	Config *config.Config
	Decide Decider
}

func (r *Register) Execute(ctx context.Context) RegisterResult {
	admin := r.Config.Admin
	session, out := r.Auth.Login(ctx, admin.Username, admin.Password, "")
	if !out.OK() || session.Token == "" {
		return RegisterResult{Error: ErrLoginFailed}
	}

	reg := actions.Registration{
		UserName:     gen.UserName(),
		Password:     gen.Password(),
		Gender:       r.Decide.Intn(2) + 1,
		DocumentType: 1,
		DocumentNum:  gen.DocumentNumber(),
		Email:        gen.Email(),
	}
	out = r.Auth.Register(ctx, session.Token, reg)
	if !out.OK() {
		if out.Message != "" {
			return RegisterResult{Error: out.Message}
		}
		return RegisterResult{Error: ErrMalformed}
	}
	return RegisterResult{Success: true, UserName: reg.UserName}
}
