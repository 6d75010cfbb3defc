package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var consentCmd = &cobra.Command{
	Use:       "consent [accept|reset]",
	Short:     "Show or change the stored cookie consent",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"accept", "reset"},
	RunE:      runConsent,
}

func init() {
	rootCmd.AddCommand(consentCmd)
}

func runConsent(_ *cobra.Command, args []string) error {
	st, err := openStore(loadConfig())
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if len(args) == 1 {
		switch args[0] {
		case "accept":
			err = st.SetConsent(true)
		case "reset":
			err = st.SetConsent(false)
		default:
			return fmt.Errorf("unknown action %q (want accept or reset)", args[0])
		}
		if err != nil {
			return fmt.Errorf("saving consent: %w", err)
		}
	}

	accepted, err := st.Consent()
	if err != nil {
		return fmt.Errorf("reading consent: %w", err)
	}
	if accepted {
		fmt.Println("  Cookies: accepted")
	} else {
		fmt.Println("  Cookies: not accepted (banner will show)")
	}
	return nil
}
