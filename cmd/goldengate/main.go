package main

import (
	"fmt"
	"os"

	cli "github.com/urfave/cli/v2"
)

const (
	envPrivateKey = "GOLDENGATE_PRIVATE_KEY"
	envKMSKeyID   = "GOLDENGATE_KMS_KEY_ID"
	envKMSRegion  = "GOLDENGATE_KMS_REGION"
)

func main() {
	app := &cli.App{
		Name:  "goldengate",
		Usage: "operate on GoldenGate intent contracts",
		Description: `The goldengate CLI sends single GoldenGate transactions and reads contract
state on any chain listed in the coordinator configuration. Transactions are
signed with a private key or an AWS KMS key.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Coordinator configuration file holding the chain list",
				Value:   "config.yaml",
				EnvVars: []string{"GOLDENGATE_CONFIG"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug logging",
				EnvVars: []string{"DEBUG"},
			},
			&cli.StringFlag{
				Name:    "private-key",
				Usage:   "Hex private key used to sign transactions",
				EnvVars: []string{envPrivateKey},
			},
			&cli.StringFlag{
				Name:    "kms-key-id",
				Usage:   "AWS KMS key used to sign transactions",
				EnvVars: []string{envKMSKeyID},
			},
			&cli.StringFlag{
				Name:    "kms-region",
				Usage:   "AWS region of the KMS key",
				Value:   "us-east-1",
				EnvVars: []string{envKMSRegion},
			},
			&cli.Uint64Flag{
				Name:  "gas-price-gwei",
				Usage: "Fixed gas price for transactions, 0 uses the chain configuration",
				Value: 10,
			},
			&cli.BoolFlag{
				Name:  "wait",
				Usage: "Wait for the transaction receipt",
				Value: true,
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "submit-intent",
				Usage: "Deposit native funds on the source chain and open an intent",
				Flags: []cli.Flag{
					chainFlag("Source chain id"),
					&cli.StringFlag{Name: "amount", Usage: "Deposit in ether", Value: "0.001"},
					&cli.StringFlag{Name: "min-amount", Usage: "Minimum amount the beneficiary receives, in ether", Value: "0.0009"},
					&cli.Uint64Flag{Name: "destination-chain", Usage: "Destination chain id", Required: true},
					&cli.StringFlag{Name: "beneficiary", Usage: "Receiver on the destination chain, defaults to the signer"},
				},
				Action: submitIntentAction,
			},
			{
				Name:  "propose",
				Usage: "Deposit a bid for an intent on the destination chain",
				Flags: []cli.Flag{
					chainFlag("Destination chain id"),
					&cli.Uint64Flag{Name: "source-chain", Usage: "Chain id the intent lives on", Required: true},
					&cli.StringFlag{Name: "intent", Usage: "Intent uid", Required: true},
					&cli.StringFlag{Name: "amount", Usage: "Proposed amount in ether", Value: "0.0009"},
					&cli.StringFlag{Name: "destination", Usage: "Beneficiary paid on settlement, defaults to the signer"},
					&cli.StringFlag{Name: "forwarding", Usage: "Address paid the intent deposit, defaults to the signer"},
				},
				Action: proposeAction,
			},
			{
				Name:  "accept",
				Usage: "Accept a bid for one of the signer's intents",
				Flags: []cli.Flag{
					chainFlag("Source chain id"),
					&cli.StringFlag{Name: "intent", Usage: "Intent uid", Required: true},
					&cli.StringFlag{Name: "bid", Usage: "Bid uid", Required: true},
				},
				Action: acceptAction,
			},
			{
				Name:  "settle",
				Usage: "Pay the beneficiary from an accepted bid",
				Flags: []cli.Flag{
					chainFlag("Destination chain id"),
					&cli.Uint64Flag{Name: "source-chain", Usage: "Chain id the intent lives on", Required: true},
					&cli.StringFlag{Name: "intent", Usage: "Intent uid", Required: true},
					&cli.StringFlag{Name: "bid", Usage: "Bid uid", Required: true},
				},
				Action: settleAction,
			},
			{
				Name:  "withdraw",
				Usage: "Withdraw a bid that was not accepted",
				Flags: []cli.Flag{
					chainFlag("Destination chain id"),
					&cli.StringFlag{Name: "bid", Usage: "Bid uid", Required: true},
				},
				Action: withdrawAction,
			},
			{
				Name:  "reject",
				Usage: "Reject all bids and return the intent deposit to its owner",
				Flags: []cli.Flag{
					chainFlag("Source chain id"),
					&cli.StringFlag{Name: "intent", Usage: "Intent uid", Required: true},
				},
				Action: rejectAction,
			},
			{
				Name:  "release",
				Usage: "Release a fulfilled intent's deposit to the settler",
				Flags: []cli.Flag{
					chainFlag("Source chain id"),
					&cli.StringFlag{Name: "intent", Usage: "Intent uid", Required: true},
					&cli.StringFlag{Name: "destination", Usage: "Receiver of the deposit, defaults to the signer"},
				},
				Action: releaseAction,
			},
			{
				Name:  "get-intent",
				Usage: "Print the contract view of an intent",
				Flags: []cli.Flag{
					chainFlag("Source chain id"),
					&cli.StringFlag{Name: "intent", Usage: "Intent uid", Required: true},
				},
				Action: getIntentAction,
			},
			{
				Name:  "get-bid",
				Usage: "Print the contract view of a bid",
				Flags: []cli.Flag{
					chainFlag("Destination chain id"),
					&cli.StringFlag{Name: "bid", Usage: "Bid uid", Required: true},
				},
				Action: getBidAction,
			},
			{
				Name:  "generate-key",
				Usage: "Compute the key binding a bid to an intent and compare it with the contract",
				Flags: []cli.Flag{
					chainFlag("Chain id whose contract is queried"),
					&cli.Uint64Flag{Name: "source-chain", Usage: "Chain id the intent lives on", Required: true},
					&cli.StringFlag{Name: "intent", Usage: "Intent uid", Required: true},
				},
				Action: generateKeyAction,
			},
			{
				Name:  "admin-token",
				Usage: "Issue a bearer token for the coordinator admin API",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "subject", Usage: "Operator name recorded in the token", Required: true},
					&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime", Value: defaultTokenTTL},
				},
				Action: adminTokenAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func chainFlag(usage string) cli.Flag {
	return &cli.Uint64Flag{Name: "chain", Usage: usage, Required: true}
}
