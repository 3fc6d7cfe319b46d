// Command sign prints the hex HMAC-SHA256 signature a sender would put in the
// X-Signature header. The body comes from the first argument or stdin, the
// secret from WEBHOOK_SECRET.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/joelkehle/webhook-inbox/internal/inbox"
)

func main() {
	flag.Parse()
	_ = godotenv.Load()

	secret := os.Getenv("WEBHOOK_SECRET")
	if secret == "" {
		secret = "testsecret"
	}

	var body []byte
	if flag.NArg() > 0 {
		body = []byte(flag.Arg(0))
	} else {
		var err error
		body, err = io.ReadAll(os.Stdin)
		if err != nil {
			log.Fatalf("read stdin: %v", err)
		}
	}

	fmt.Println(inbox.Signature(secret, body))
}
