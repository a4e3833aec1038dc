package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/newtron-network/mcoracle/pkg/model"
	"github.com/newtron-network/mcoracle/pkg/util"
)

var bitmapWidth int

var bitmapCmd = &cobra.Command{
	Use:   "bitmap",
	Short: "Convert between port lists and port bitmaps",
	Long: `Convert between port lists and the fixed-width port bitmaps the
driver exchanges: bit pipe*72+local, 288 bits for up to four pipes or 576
for eight.

Ports are device port numbers in range notation ("1-3,130") or
pipe:local ranges ("0-1:0-3"). encode picks the narrowest width that
covers its ports unless --width is given.`,
}

var bitmapEncodeCmd = &cobra.Command{
	Use:   "encode <ports> ...",
	Short: "Encode ports as a hex bitmap",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ports []model.Port
		for _, arg := range args {
			p, err := parsePortArg(arg)
			if err != nil {
				return err
			}
			ports = append(ports, p...)
		}
		width := bitmapWidth
		if !cmd.Flags().Changed("width") {
			width = widthFor(ports)
		}
		b, err := model.PortBitmapOf(width, ports)
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(map[string]interface{}{"width": b.Width(), "hex": b.Hex(), "ports": b.Ports()})
		}
		fmt.Println(b.Hex())
		return nil
	},
}

var bitmapDecodeCmd = &cobra.Command{
	Use:   "decode <hex>",
	Short: "Decode a hex bitmap into ports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := model.ParsePortBitmapHex(bitmapWidth, strings.TrimPrefix(args[0], "0x"))
		if err != nil {
			return err
		}
		if cfg.JSON {
			return printJSON(map[string]interface{}{"width": b.Width(), "ports": b.Ports()})
		}
		fmt.Println(model.FormatPorts(b.Ports()))
		return nil
	},
}

func init() {
	bitmapCmd.PersistentFlags().IntVarP(&bitmapWidth, "width", "w", model.PlainBitmapWidth, "Bitmap width in bits (288 or 576)")
	bitmapCmd.AddCommand(bitmapEncodeCmd, bitmapDecodeCmd)
}

// parsePortArg accepts device port ranges or pipe:local ranges.
func parsePortArg(arg string) ([]model.Port, error) {
	if !strings.Contains(arg, ":") {
		return model.ParsePorts(arg)
	}
	pairs, err := util.ExpandPipePortRangeMax(arg, model.MaxPipes, model.PortsPerPipe)
	if err != nil {
		return nil, err
	}
	ports := make([]model.Port, 0, len(pairs))
	for _, pair := range pairs {
		ports = append(ports, model.NewPort(pair[0], pair[1]))
	}
	return ports, nil
}

// widthFor returns the narrowest bitmap width covering every port's pipe.
func widthFor(ports []model.Port) int {
	pipes := 0
	for _, p := range ports {
		if p.Pipe()+1 > pipes {
			pipes = p.Pipe() + 1
		}
	}
	return model.BitmapWidthForPipes(pipes)
}
