package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	schemadesk "github.com/schemadesk/engine/sdk-go"
)

func main() {
	addr := "localhost:8080"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	c, err := schemadesk.NewClient(addr)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}
	defer c.Close()

	sub, err := c.Events.Subscribe(ctx)
	if err != nil {
		log.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	fmt.Printf("Watching %s, press Ctrl+C to stop\n", addr)
	for {
		select {
		case <-ctx.Done():
			return
		case evt, ok := <-sub.Events():
			if !ok {
				if err := sub.Err(); err != nil {
					log.Fatalf("Subscription ended: %v", err)
				}
				return
			}
			switch {
			case evt.Node != nil:
				fmt.Printf("%s %s\n", evt.Type, evt.Node.CurrentPath)
			default:
				fmt.Println(evt.Type)
			}
		}
	}
}
