// Command hayas is the storefront order client: it keeps the local
// cart, places orders, and follows their lifecycle over the realtime
// channel. Commands are read from stdin, one per line:
//
//	add <productId> <title> [one|two]   increase a cart line
//	remove <productId> [one|two]        decrease a cart line
//	cart                                show the cart
//	clear                               empty the cart
//	place <name> <phone> <street> <area> place the order
//	retry                               retry a timed out order
//	status                              show the current order
//	orders                              show order history
//	quit
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/api"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/cart"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/config"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/lifecycle"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/model"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/realtime"
	"github.com/mohammedsadaqathullah/HAYAS-APP/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)
	logger.Info().Str("identity", cfg.Identity.Email).Msg("starting hayas client")

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Local persistence: the cart survives restarts, order state does not.
	store, err := storage.Open(cfg.Storage.Path, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	initial, err := store.LoadCart()
	if err != nil {
		return err
	}
	cartStore := cart.NewStore(initial, store, logger)

	backend := api.NewClient(cfg.API, logger)
	controller := lifecycle.NewController(cfg.Identity.Email, backend, cartStore, cfg.Order, logger)

	// Rehydrate order state from the backend.
	if err := controller.Hydrate(ctx); err != nil {
		return fmt.Errorf("failed to hydrate orders: %w", err)
	}

	socket, err := realtime.Dial(ctx, cfg.Realtime, logger)
	if err != nil {
		return err
	}

	listener := lifecycle.NewListener(socket, controller, cfg.Identity.Email, logger)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := listener.Run(ctx)
		if err == context.Canceled {
			return nil
		}
		return err
	})
	g.Go(func() error {
		defer cancel()
		return repl(ctx, controller, cfg)
	})

	return g.Wait()
}

// repl reads commands from stdin until EOF, quit, or cancellation.
func repl(ctx context.Context, controller *lifecycle.Controller, cfg *config.Config) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("hayas client ready, type a command (cart, add, place, status, quit)")

	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit", "exit":
			return nil

		case "add", "remove":
			if len(fields) < 2 {
				fmt.Println("usage: add|remove <productId> [title] [one|two]")
				continue
			}
			item := model.CartItem{
				ProductID:    fields[1],
				Title:        fields[1],
				QuantityType: model.QuantityOne,
			}
			if len(fields) > 2 {
				item.Title = fields[2]
			}
			if len(fields) > 3 && strings.EqualFold(fields[3], "two") {
				item.QuantityType = model.QuantityTwo
			}
			action := model.ActionIncrease
			if fields[0] == "remove" {
				action = model.ActionDecrease
			}
			if err := controller.UpdateQuantity(item, action); err != nil {
				fmt.Println("!", err)
			}

		case "cart":
			printCart(controller)

		case "clear":
			if err := controller.ClearCart(); err != nil {
				fmt.Println("!", err)
			}

		case "place":
			if len(fields) < 5 {
				fmt.Println("usage: place <name> <phone> <street> <area>")
				continue
			}
			address := model.Address{
				Name:           fields[1],
				Phone:          fields[2],
				Street:         fields[3],
				Area:           fields[4],
				DefaultAddress: "Eruvadi, Tirunelveli District - 627103",
			}
			order, err := controller.PlaceOrder(ctx, address)
			if err != nil {
				fmt.Println("!", err)
				continue
			}
			fmt.Printf("order %s placed, waiting for a partner (%s window)\n",
				order.ID, cfg.Order.TimeoutWindow)

		case "retry":
			order, err := controller.RetryOrder(ctx)
			if err != nil {
				fmt.Println("!", err)
				continue
			}
			fmt.Printf("order %s re-opened\n", order.ID)

		case "status":
			printStatus(ctx, controller)

		case "orders":
			for _, o := range controller.Store().Orders() {
				badge := o.Status.Badge()
				fmt.Printf("%s  %-12s %s (%d items)\n", o.CreatedAt.Format("2006-01-02 15:04"), o.Status, badge.Label, len(o.Products))
			}

		default:
			fmt.Println("unknown command:", fields[0])
		}
	}

	return scanner.Err()
}

func printCart(controller *lifecycle.Controller) {
	snap := controller.Store().Snapshot()
	if snap.ActiveOrder {
		fmt.Println("cart is locked: an order is in progress")
	}
	items := controller.CartItems()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return
	}
	for _, it := range items {
		fmt.Printf("%-20s x%d (%s)\n", it.Title, it.Count, it.QuantityType)
	}
}

func printStatus(ctx context.Context, controller *lifecycle.Controller) {
	snap := controller.Store().Snapshot()
	if snap.Current == nil {
		fmt.Println("no current order")
		return
	}
	badge := snap.Current.Status.Badge()
	fmt.Printf("order %s: %s\n", snap.Current.ID, badge.Label)
	if controller.Timer().Running() {
		fmt.Printf("time remaining: %s\n", controller.Timer().Remaining().Round(time.Second))
	}
	if snap.TimeoutInfo != nil {
		fmt.Printf("no partner accepted; call %s (%s) or retry\n",
			snap.TimeoutInfo.SupportContact.Name, snap.TimeoutInfo.SupportContact.Phone)
	}
	if snap.PartnerEmail != "" {
		if details, err := controller.PartnerDetails(ctx); err == nil && details != nil {
			fmt.Printf("delivery partner: %s (%s)\n", details.Name, details.Phone)
		} else {
			fmt.Printf("delivery partner: %s\n", snap.PartnerEmail)
		}
	}
}
