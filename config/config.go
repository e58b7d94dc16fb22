// Copyright 2021 Snowfork
// SPDX-License-Identifier: LGPL-3.0-only

package config

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/snowfork/messagebridge/bridge"
	"github.com/snowfork/messagebridge/fixed"
	"github.com/snowfork/messagebridge/messages"
	"github.com/snowfork/messagebridge/params"
)

type Config struct {
	Bridge BridgeConfig `mapstructure:"bridge"`
}

type BridgeConfig struct {
	// Markup added to estimated message cost, in percent.
	RelayerFeePercent uint32 `mapstructure:"relayer-fee-percent"`
	// Messages pallet instance on the bridged chain.
	BridgedMessagesPalletName string `mapstructure:"bridged-messages-pallet-name"`
	// Lanes usable in each direction, as 4-byte hex values.
	OutboundLanes []messages.LaneID `mapstructure:"outbound-lanes"`
	InboundLanes  []messages.LaneID `mapstructure:"inbound-lanes"`
	// Initial economic parameters.
	ConversionRate string `mapstructure:"conversion-rate"`
	FeeMultiplier  string `mapstructure:"fee-multiplier"`
	// Optional 32-byte hex account restriction on outbound senders.
	AllowedSender string `mapstructure:"allowed-sender"`
}

func (c Config) Validate() error {
	if c.Bridge.BridgedMessagesPalletName == "" {
		return fmt.Errorf("bridged messages pallet name is not set")
	}
	if len(c.Bridge.OutboundLanes) == 0 {
		return fmt.Errorf("no outbound lanes configured")
	}
	if len(c.Bridge.InboundLanes) == 0 {
		return fmt.Errorf("no inbound lanes configured")
	}
	return nil
}

// Load reads and validates a config file.
func Load(path string) (*Config, error) {
	viper.SetConfigFile(path)
	err := viper.ReadInConfig()
	if err != nil {
		return nil, err
	}

	var config Config
	err = viper.Unmarshal(&config, viper.DecodeHook(HexHookFunc()))
	if err != nil {
		return nil, err
	}

	err = config.Validate()
	if err != nil {
		return nil, err
	}

	return &config, nil
}

// NewBridge assembles a bridge descriptor and parameter store from the
// config, applying configured initial parameters on top of the defaults.
func (c Config) NewBridge() (*bridge.MessageBridge, error) {
	store := params.NewStore()

	if c.Bridge.ConversionRate != "" {
		rate, err := fixed.Parse(c.Bridge.ConversionRate)
		if err != nil {
			return nil, fmt.Errorf("conversion rate: %w", err)
		}
		store.Apply(params.NewConversionRate(rate))
	}
	if c.Bridge.FeeMultiplier != "" {
		multiplier, err := fixed.Parse(c.Bridge.FeeMultiplier)
		if err != nil {
			return nil, fmt.Errorf("fee multiplier: %w", err)
		}
		store.Apply(params.NewFeeMultiplier(multiplier))
	}
	if c.Bridge.AllowedSender != "" {
		sender, err := messages.NewAccountIDFromHex(c.Bridge.AllowedSender)
		if err != nil {
			return nil, fmt.Errorf("allowed sender: %w", err)
		}
		store.Apply(params.NewAllowedSender(&sender))
	}

	b := bridge.NewKusamaPolkadotBridge(store)
	b.BridgedMessagesPalletName = c.Bridge.BridgedMessagesPalletName
	if c.Bridge.RelayerFeePercent > 0 {
		b.RelayerFeePercent = c.Bridge.RelayerFeePercent
	}
	return b, nil
}

// HexHookFunc decodes hex strings in the config into lane ids.
func HexHookFunc() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}

		if t != reflect.TypeOf(messages.LaneID{}) {
			return data, nil
		}

		return messages.NewLaneIDFromHex(data.(string))
	}
}
