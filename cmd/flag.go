// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is a command line flag backed by a configuration key
type Flag struct {
	// key is the viper configuration key
	key string
	// cli is the name of the command line flag
	cli string
}

// NewFlag returns a flag named cli for the configuration key
func NewFlag(key, cli string) *Flag {
	return &Flag{key: key, cli: cli}
}

type (
	StringFlag      struct{ *Flag }
	StringSliceFlag struct{ *Flag }
	BoolFlag        struct{ *Flag }
	IntFlag         struct{ *Flag }
	DurationFlag    struct{ *Flag }
	Float64Flag     struct{ *Flag }
)

func (f *Flag) String() *StringFlag { return &StringFlag{f} }

func (f *Flag) StringSlice() *StringSliceFlag { return &StringSliceFlag{f} }

func (f *Flag) Bool() *BoolFlag { return &BoolFlag{f} }

func (f *Flag) Int() *IntFlag { return &IntFlag{f} }

func (f *Flag) Duration() *DurationFlag { return &DurationFlag{f} }

func (f *Flag) Float64() *Float64Flag { return &Float64Flag{f} }

// Bind registers the flag as persistent flag of cmd and binds it to the configuration key
func (f *StringFlag) Bind(cmd *cobra.Command, value, usage string) {
	cmd.PersistentFlags().String(f.cli, value, usage)
	f.bind(cmd)
}

// Bind registers the flag as persistent flag of cmd and binds it to the configuration key
func (f *StringSliceFlag) Bind(cmd *cobra.Command, value []string, usage string) {
	cmd.PersistentFlags().StringSlice(f.cli, value, usage)
	f.bind(cmd)
}

// Bind registers the flag as persistent flag of cmd and binds it to the configuration key
func (f *BoolFlag) Bind(cmd *cobra.Command, value bool, usage string) {
	cmd.PersistentFlags().Bool(f.cli, value, usage)
	f.bind(cmd)
}

// Bind registers the flag as persistent flag of cmd and binds it to the configuration key
func (f *IntFlag) Bind(cmd *cobra.Command, value int, usage string) {
	cmd.PersistentFlags().Int(f.cli, value, usage)
	f.bind(cmd)
}

// Bind registers the flag as persistent flag of cmd and binds it to the configuration key
func (f *DurationFlag) Bind(cmd *cobra.Command, value time.Duration, usage string) {
	cmd.PersistentFlags().Duration(f.cli, value, usage)
	f.bind(cmd)
}

// Bind registers the flag as persistent flag of cmd and binds it to the configuration key
func (f *Float64Flag) Bind(cmd *cobra.Command, value float64, usage string) {
	cmd.PersistentFlags().Float64(f.cli, value, usage)
	f.bind(cmd)
}

func (f *Flag) bind(cmd *cobra.Command) {
	cobra.CheckErr(viper.BindPFlag(f.key, cmd.PersistentFlags().Lookup(f.cli)))
}
