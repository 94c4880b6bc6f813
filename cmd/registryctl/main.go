// Command registryctl issues caller tokens and drives a running registry
// over HTTP.
package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/urfave/cli.v1"

	jwttoken "renterverify/internal/jwt_token"
)

var cmds = cli.Commands{
	{
		Name:    "token",
		Usage:   "issue a bearer token for a caller identity",
		Aliases: []string{"t"},
		Flags: []cli.Flag{
			cli.StringFlag{
				Name:  "caller, c",
				Usage: "identity the token asserts",
			},
			cli.DurationFlag{
				Name:  "ttl",
				Value: time.Hour,
				Usage: "token lifetime",
			},
		},
		Action: issueToken,
	},
	{
		Name:      "request",
		Usage:     "declare the caller's business identity",
		ArgsUsage: "<business name> <business id>",
		Action:    requestVerification,
	},
	{
		Name:      "approve",
		Usage:     "approve a renter (admin only)",
		ArgsUsage: "<renter>",
		Action:    approve,
	},
	{
		Name:      "revoke",
		Usage:     "revoke a renter's verification (admin only)",
		ArgsUsage: "<renter>",
		Action:    revoke,
	},
	{
		Name:      "status",
		Usage:     "print whether a renter is verified",
		ArgsUsage: "<renter>",
		Action:    status,
	},
	{
		Name:      "show",
		Usage:     "print a renter's verification record",
		ArgsUsage: "<renter>",
		Action:    show,
	},
	{
		Name:  "admin",
		Usage: "show or hand over the registry admin",
		Subcommands: cli.Commands{
			{
				Name:   "show",
				Usage:  "print the current admin",
				Action: showAdmin,
			},
			{
				Name:      "set",
				Usage:     "hand admin rights to another identity",
				ArgsUsage: "<new admin>",
				Action:    setAdmin,
			},
		},
	},
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	cliApp := cli.NewApp()
	cliApp.Name = "registryctl"
	cliApp.Usage = "Work with the renter verification registry."
	cliApp.Version = "0.1"
	cliApp.Commands = cmds
	cliApp.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "url, u",
			Value:  "http://localhost:8080",
			EnvVar: "REGISTRY_URL",
			Usage:  "base URL of the registry",
		},
		cli.StringFlag{
			Name:   "signing-key",
			Value:  "dev-secret-key-change-in-production",
			EnvVar: "JWT_SIGNING_KEY",
			Usage:  "HMAC key shared with the server",
		},
		cli.StringFlag{
			Name:   "issuer",
			Value:  "renterverify",
			EnvVar: "JWT_ISSUER",
			Usage:  "token issuer expected by the server",
		},
		cli.StringFlag{
			Name:   "token",
			EnvVar: "REGISTRY_TOKEN",
			Usage:  "bearer token used for mutations",
		},
	}
	return cliApp
}

func issueToken(c *cli.Context) error {
	caller := c.String("caller")
	if caller == "" {
		return fmt.Errorf("--caller is required")
	}
	svc := jwttoken.NewJWTService(c.GlobalString("signing-key"), c.GlobalString("issuer"))
	token, err := svc.IssueCallerToken(caller, c.Duration("ttl"))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, token)
	return nil
}
