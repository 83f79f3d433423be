// Command testserver runs a stand-in train-ticket backend for local load
// testing, with flags for its failure modes.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"ticketstorm/testserver"
)

func main() {
	port := flag.Int("port", 32677, "port to listen on")
	host := flag.String("host", "localhost", "host to bind to")
	soldOut := flag.Bool("sold-out", false, "reject every reservation with a sold-out error")
	emptyContacts := flag.Bool("empty-contacts", false, "serve an empty contact list for every account")
	enveloped := flag.Bool("enveloped", false, "wrap list responses in the status envelope")
	flag.Parse()

	server := testserver.NewServer(testserver.Options{
		SoldOut:       *soldOut,
		EmptyContacts: *emptyContacts,
		Enveloped:     *enveloped,
	})
	addr := fmt.Sprintf("%s:%d", *host, *port)

	fmt.Println("ticketstorm test server")
	fmt.Println("=======================")
	fmt.Printf("Listening on http://%s\n\n", addr)
	fmt.Println("Endpoints:")
	fmt.Println("  POST /api/v1/users/login                                - Authenticate")
	fmt.Println("  POST /api/v1/travelservice/trips/left                   - Query G/D trips")
	fmt.Println("  POST /api/v1/travel2service/trips/left                  - Query other trips")
	fmt.Println("  GET  /api/v1/assuranceservice/assurances/types          - Assurance types")
	fmt.Println("  GET  /api/v1/contactservice/contacts/account/{id}       - Contacts")
	fmt.Println("  GET  /api/v1/foodservice/foods/{date}/{s}/{e}/{trip}    - Food menu")
	fmt.Println("  POST /api/v1/preserveservice/preserve                   - Reserve (high-speed)")
	fmt.Println("  POST /api/v1/preserveotherservice/preserveOther         - Reserve (other)")
	fmt.Println("  GET  /api/v1/users                                      - List users")
	fmt.Println("  POST /api/v1/adminuserservice/users                     - Register user")
	fmt.Println()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Println("\nShutting down...")
		os.Exit(0)
	}()

	log.Fatal(http.ListenAndServe(addr, server.Handler()))
}
