package cmd

import (
	"fmt"
	"log"
	"os"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/profile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	fem "github.com/AvanishMeedimale/finite-element"
)

var (
	cfgFile     string
	stopProfile = func() {}
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fem1d",
	Short: "Finite element solver for 1D second order boundary value problems",
	Long: `
Solves -(p u')' + q u' + r u = f on an interval with P1 or P2 Lagrange
elements.  The problem is read from a YAML file:

fem1d solve -f problem.yaml`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetBool("verbose") {
			fem.SetLogger(log.New(os.Stderr, "fem: ", log.Ltime))
		}
		return startProfile(viper.GetString("profile"))
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately.  This is called by main.main().  It only needs to happen
// once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	stopProfile()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fem1d.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "log non-linear iterations to stderr")
	rootCmd.PersistentFlags().String("profile", "", "write a cpu or mem profile to the working directory")
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("profile", rootCmd.PersistentFlags().Lookup("profile"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".fem1d")
	}

	viper.SetEnvPrefix("FEM1D")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// startProfile starts the profiler selected with --profile.
func startProfile(mode string) error {
	switch mode {
	case "":
		return nil
	case "cpu":
		stopProfile = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop
	case "mem":
		stopProfile = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop
	default:
		return fmt.Errorf("unknown profile mode %q (want cpu or mem)", mode)
	}
	return nil
}
