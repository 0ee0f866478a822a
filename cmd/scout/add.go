package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"scout/internal/app"
	"scout/internal/model"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add entities to the workspace",
}

func reportInsert(w io.Writer, kind model.Kind, value string, changed bool, id int64) {
	state := "unchanged"
	if changed {
		state = "stored"
	}
	fmt.Fprintf(w, "%s #%d %s (%s)\n", kind, id, value, state)
}

// optional returns a pointer to the flag value when the flag was given.
func optional[T any](cmd *cobra.Command, name string, get func(string) (T, error)) (*T, error) {
	if !cmd.Flags().Changed(name) {
		return nil, nil
	}
	v, err := get(name)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

var addDomainCmd = &cobra.Command{
	Use:   "domain VALUE",
	Short: "Add a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			changed, id, err := a.Service().AddDomain(args[0])
			if err != nil {
				return err
			}
			reportInsert(cmd.OutOrStdout(), model.KindDomain, args[0], changed, id)
			return nil
		})
	},
}

var addSubdomainCmd = &cobra.Command{
	Use:   "subdomain SUBDOMAIN DOMAIN",
	Short: "Add a subdomain, creating its domain if needed",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			changed, id, err := a.Service().AddSubdomain(args[0], args[1])
			if err != nil {
				return err
			}
			reportInsert(cmd.OutOrStdout(), model.KindSubdomain, args[0], changed, id)
			return nil
		})
	},
}

var addIPAddrCmd = &cobra.Command{
	Use:   "ipaddr VALUE",
	Short: "Add an IP address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		n := model.NewIPAddr{Value: args[0]}
		n.Family, _ = f.GetString("family")

		var err error
		if n.Country, err = optional(cmd, "country", f.GetString); err != nil {
			return err
		}
		if n.CountryCode, err = optional(cmd, "country-code", f.GetString); err != nil {
			return err
		}
		if n.City, err = optional(cmd, "city", f.GetString); err != nil {
			return err
		}
		if n.ASN, err = optional(cmd, "asn", f.GetInt64); err != nil {
			return err
		}
		if n.ASOrg, err = optional(cmd, "as-org", f.GetString); err != nil {
			return err
		}

		return withApp(cmd, func(a *app.App) error {
			changed, id, err := a.Service().AddIPAddr(n)
			if err != nil {
				return err
			}
			reportInsert(cmd.OutOrStdout(), model.KindIPAddr, n.Value, changed, id)
			return nil
		})
	},
}

var addLinkCmd = &cobra.Command{
	Use:   "link SUBDOMAIN IPADDR",
	Short: "Record that a subdomain resolves to an IP address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(a *app.App) error {
			changed, id, err := a.Service().Link(args[0], args[1])
			if err != nil {
				return err
			}
			reportInsert(cmd.OutOrStdout(), model.KindSubdomainIPAddr, args[0]+" -> "+args[1], changed, id)
			return nil
		})
	},
}

var addURLCmd = &cobra.Command{
	Use:   "url SUBDOMAIN URL",
	Short: "Add a URL on an existing subdomain",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		n := model.NewURL{Value: args[1]}

		var err error
		if n.Status, err = optional(cmd, "status", f.GetInt64); err != nil {
			return err
		}
		if n.Title, err = optional(cmd, "title", f.GetString); err != nil {
			return err
		}
		if n.Online, err = optional(cmd, "online", f.GetBool); err != nil {
			return err
		}
		if n.Redirect, err = optional(cmd, "redirect", f.GetString); err != nil {
			return err
		}

		return withApp(cmd, func(a *app.App) error {
			changed, id, err := a.Service().AddURL(args[0], n)
			if err != nil {
				return err
			}
			reportInsert(cmd.OutOrStdout(), model.KindURL, n.Value, changed, id)
			return nil
		})
	},
}

var addEmailCmd = &cobra.Command{
	Use:   "email VALUE",
	Short: "Add an email address",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		valid, err := optional(cmd, "valid", cmd.Flags().GetBool)
		if err != nil {
			return err
		}
		return withApp(cmd, func(a *app.App) error {
			changed, id, err := a.Service().AddEmail(args[0], valid)
			if err != nil {
				return err
			}
			reportInsert(cmd.OutOrStdout(), model.KindEmail, args[0], changed, id)
			return nil
		})
	},
}

func init() {
	addIPAddrCmd.Flags().String("family", "", "Address family: v4 or v6 (default: detected)")
	addIPAddrCmd.Flags().String("country", "", "Country name")
	addIPAddrCmd.Flags().String("country-code", "", "ISO country code")
	addIPAddrCmd.Flags().String("city", "", "City")
	addIPAddrCmd.Flags().Int64("asn", 0, "Autonomous system number")
	addIPAddrCmd.Flags().String("as-org", "", "Autonomous system organisation")

	addURLCmd.Flags().Int64("status", 0, "HTTP status code")
	addURLCmd.Flags().String("title", "", "Page title")
	addURLCmd.Flags().Bool("online", false, "Whether the URL answered")
	addURLCmd.Flags().String("redirect", "", "Redirect target")

	addEmailCmd.Flags().Bool("valid", false, "Whether the address was verified")

	addCmd.AddCommand(addDomainCmd)
	addCmd.AddCommand(addSubdomainCmd)
	addCmd.AddCommand(addIPAddrCmd)
	addCmd.AddCommand(addLinkCmd)
	addCmd.AddCommand(addURLCmd)
	addCmd.AddCommand(addEmailCmd)
}
