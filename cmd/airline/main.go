// Command airline is a terminal client for the flight-booking data layer.
// It talks to the configured Supabase backend, or runs fully offline on the
// local fallback store when no backend is configured.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Joseph-eiei/AirlineApp/internal/auth"
	"github.com/Joseph-eiei/AirlineApp/internal/backend"
	"github.com/Joseph-eiei/AirlineApp/internal/booking"
	"github.com/Joseph-eiei/AirlineApp/internal/config"
	"github.com/Joseph-eiei/AirlineApp/internal/localstore"
	"github.com/Joseph-eiei/AirlineApp/internal/model"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type app struct {
	backend  backend.Backend
	auth     *auth.Service
	sessions *localstore.SessionStore
	logger   *slog.Logger
}

func run(args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	be := backend.New(cfg, logger)
	storage := localstore.NewStorage(cfg.DataDir)
	sessions := localstore.NewSessionStore(storage, logger)

	a := &app{
		backend:  be,
		auth:     auth.NewService(be, sessions, logger),
		sessions: sessions,
		logger:   logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "signup":
		return a.signup(ctx, args[1:])
	case "logout":
		return a.auth.Logout()
	case "whoami":
		return a.whoami()
	case "cities":
		return a.cities(ctx)
	case "search":
		return a.search(ctx, args[1:])
	case "book":
		return a.book(ctx, args[1:])
	case "bookings":
		return a.bookings(ctx)
	case "cancel":
		return a.cancel(ctx, args[1:])
	default:
		usage()
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func usage() {
	fmt.Println(`usage: airline <command> [flags]

commands:
  login     -u <username> -p <password>
  signup    -u <username> -p <password>
  logout
  whoami
  cities
  search    -from <code> -to <code> -date <yyyy-mm-dd>
  book      -flight <flight-id>
  bookings
  cancel    -booking <booking-id>`)
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	fs.Parse(args)

	user, err := a.auth.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", user.Username, user.ID)
	return nil
}

func (a *app) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	fs.Parse(args)

	user, err := a.auth.Signup(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("account created: %s (%s)\n", user.Username, user.ID)
	return nil
}

func (a *app) whoami() error {
	user, err := a.auth.CurrentUser()
	if err != nil {
		return err
	}
	if user == nil {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s (%s)\n", user.Username, user.ID)
	return nil
}

func (a *app) cities(ctx context.Context) error {
	cities, err := a.backend.Cities(ctx)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CODE\tNAME\tCOUNTRY\tID")
	for _, c := range cities {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.Code, c.Name, c.Country, c.ID)
	}
	return w.Flush()
}

func (a *app) search(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	from := fs.String("from", "", "origin city code")
	to := fs.String("to", "", "destination city code")
	date := fs.String("date", "", "travel date (yyyy-mm-dd)")
	fs.Parse(args)

	fromID, err := a.cityID(ctx, *from)
	if err != nil {
		return err
	}
	toID, err := a.cityID(ctx, *to)
	if err != nil {
		return err
	}

	flights, err := a.backend.SearchFlights(ctx, model.FlightQuery{
		FromCityID: fromID,
		ToCityID:   toID,
		TravelDate: *date,
	})
	if err != nil {
		return err
	}

	// Drop flights the current user has already booked.
	if user, _ := a.auth.CurrentUser(); user != nil {
		svc := booking.NewService(a.backend, user.ID, a.logger)
		if err := svc.Refresh(ctx); err == nil {
			flights = svc.FilterUnbooked(flights)
		}
	}

	if len(flights) == 0 {
		fmt.Println("no flights found")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FLIGHT\tDEPART\tARRIVE\tPRICE\tID")
	for _, f := range flights {
		fmt.Fprintf(w, "%s\t%s\t%s\t$%.2f\t%s\n", f.FlightNumber, f.DepartureTime, f.ArrivalTime, f.Price, f.ID)
	}
	return w.Flush()
}

func (a *app) book(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("book", flag.ExitOnError)
	flightID := fs.String("flight", "", "flight id")
	fs.Parse(args)
	if *flightID == "" {
		return fmt.Errorf("-flight is required")
	}

	svc, err := a.bookingService(ctx)
	if err != nil {
		return err
	}
	if err := svc.Book(ctx, *flightID); err != nil {
		return err
	}
	if b := svc.BookingByFlight(*flightID); b != nil {
		fmt.Printf("booked: %s\n", b.BookingID)
	}
	return nil
}

func (a *app) bookings(ctx context.Context) error {
	svc, err := a.bookingService(ctx)
	if err != nil {
		return err
	}

	items := svc.Bookings()
	if len(items) == 0 {
		fmt.Println("no bookings")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "BOOKING\tFLIGHT\tDEPART")
	for _, b := range items {
		depart := b.FlightID
		if b.Flight != nil {
			depart = fmt.Sprintf("%s %s", b.Flight.FlightNumber, b.Flight.DepartureTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.BookingID, b.FlightID, depart)
	}
	return w.Flush()
}

func (a *app) cancel(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("cancel", flag.ExitOnError)
	bookingID := fs.String("booking", "", "booking id")
	fs.Parse(args)
	if *bookingID == "" {
		return fmt.Errorf("-booking is required")
	}

	svc, err := a.bookingService(ctx)
	if err != nil {
		return err
	}
	if err := svc.Cancel(ctx, *bookingID); err != nil {
		return err
	}
	fmt.Println("cancelled")
	return nil
}

func (a *app) bookingService(ctx context.Context) (*booking.Service, error) {
	user, err := a.auth.CurrentUser()
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("not logged in; run airline login first")
	}

	svc := booking.NewService(a.backend, user.ID, a.logger)
	if err := svc.Refresh(ctx); err != nil {
		return nil, err
	}
	return svc, nil
}

func (a *app) cityID(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", fmt.Errorf("city code is required")
	}
	cities, err := a.backend.Cities(ctx)
	if err != nil {
		return "", err
	}
	for _, c := range cities {
		if strings.EqualFold(c.Code, code) || c.ID == code {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("unknown city %q", code)
}
