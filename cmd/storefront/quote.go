package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aims/storefront/internal/client"
	"github.com/aims/storefront/internal/delivery"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func quoteFeeCommand() *cli.Command {
	return &cli.Command{
		Name:  "quote-fee",
		Usage: "print the delivery fee for a parcel",
		Flags: []cli.Flag{
			&cli.Float64Flag{Name: "weight", Usage: "parcel weight in kg", Required: true},
			&cli.StringFlag{Name: "province", Usage: "destination province", Required: true},
			&cli.StringFlag{Name: "order-value", Usage: "product cost in VND", Value: "0"},
			&cli.StringFlag{Name: "backend-url", Usage: "ask a remote backend instead of the reference table"},
			&cli.DurationFlag{Name: "timeout", Value: 5 * time.Second},
		},
		Action: func(c *cli.Context) error {
			orderValue, err := decimal.NewFromString(c.String("order-value"))
			if err != nil {
				return errors.Wrap(err, "invalid order value")
			}

			var quoter delivery.Quoter = delivery.ReferenceQuoter{}
			if url := c.String("backend-url"); url != "" {
				quoter = client.NewBackend(url, client.DefaultOptions())
			}

			ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
			defer cancel()
			fee, err := delivery.NewResolver(quoter, nil, c.Duration("timeout")).
				CalculateFee(ctx, c.Float64("weight"), c.String("province"), orderValue)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, fee.String())
			return err
		},
	}
}
