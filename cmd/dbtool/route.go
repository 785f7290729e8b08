package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"foodcart-routing-service/internal/adapters/geocoder"
	"foodcart-routing-service/internal/api/dto"
	"foodcart-routing-service/internal/services"
	"foodcart-routing-service/internal/store"
)

type routedOrder struct {
	OrderID int64               `json:"order_id"`
	Address string              `json:"address"`
	Total   string              `json:"total"`
	Routing dto.RoutingResponse `json:"routing"`
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Run one routing pass over active orders and print the result as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		resolver, err := newResolver(cmd.Context(), st)
		if err != nil {
			return err
		}

		routed, err := services.RouteActiveOrders(cmd.Context(), st.Orders, st.Restaurants, services.NewRoutingPass(resolver))
		if err != nil {
			return err
		}

		out := make([]routedOrder, 0, len(routed.Orders))
		for _, o := range routed.Orders {
			res, _ := routed.Report.For(o.ID)
			out = append(out, routedOrder{
				OrderID: o.ID,
				Address: o.Address,
				Total:   o.Total().StringFixed(2),
				Routing: dto.NewRoutingResponse(res),
			})
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

var geocodeCmd = &cobra.Command{
	Use:   "geocode <address>",
	Short: "Resolve one address through the cache and print its coordinates",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := store.Open(cmd.Context(), cfg.Store)
		if err != nil {
			return err
		}
		defer st.Close()

		resolver, err := newResolver(cmd.Context(), st)
		if err != nil {
			return err
		}

		coords, err := resolver.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if coords == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "unresolved")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%.6f %.6f\n", coords.Lat, coords.Lon)
		return nil
	},
}

func newResolver(ctx context.Context, st *store.Store) (*services.GeocodeResolver, error) {
	if err := st.UseGeocodeCache(ctx, cfg.GeocodeCache); err != nil {
		return nil, err
	}

	client, err := geocoder.NewYandexClient(cfg.Geocoder.APIKey,
		geocoder.WithBaseURL(cfg.Geocoder.BaseURL),
		geocoder.WithTimeout(cfg.Geocoder.Timeout()),
		geocoder.WithMaxAttempts(cfg.Geocoder.MaxAttempts),
		geocoder.WithRateLimit(cfg.Geocoder.RateLimit),
	)
	if err != nil {
		return nil, fmt.Errorf("geocoder: %w", err)
	}

	return services.NewGeocodeResolver(st.GeocodeCache, client,
		services.WithStaleAfter(cfg.GeocodeCache.StaleAfter()),
		services.WithConcurrency(cfg.Routing.GeocodeConcurrency),
	), nil
}

func init() {
	rootCmd.AddCommand(routeCmd, geocodeCmd)
}
