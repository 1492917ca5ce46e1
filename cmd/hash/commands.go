package hash

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	hsetCmd = &cobra.Command{
		Use:   "hset [key] [field] [value] [field value]...",
		Short: "Sets one or more field-value pairs in a hash",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) < 3 || (len(args)-1)%2 != 0 {
				return fmt.Errorf("hset requires a key followed by an even number of field value arguments")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			fields := make(map[string][]byte, (len(args)-1)/2)
			for i := 1; i < len(args); i += 2 {
				fields[args[i]] = []byte(args[i+1])
			}
			inserted, err := rpcStore.HSet(key, fields)
			if err != nil {
				return err
			}
			fmt.Printf("inserted=%d\n", inserted)
			return nil
		},
	}
	hgetCmd = &cobra.Command{
		Use:   "hget [key] [field]",
		Short: "Returns the value of a hash field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			val, ok, err := rpcStore.HGet(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("found=%v, val=%s\n", ok, val)
			return nil
		},
	}
	hdelCmd = &cobra.Command{
		Use:   "hdel [key] [field]...",
		Short: "Deletes one or more fields from a hash",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			removed, err := rpcStore.HDel(args[0], args[1:])
			if err != nil {
				return err
			}
			fmt.Printf("removed=%d\n", removed)
			return nil
		},
	}
	hlenCmd = &cobra.Command{
		Use:   "hlen [key]",
		Short: "Returns the number of fields in a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := rpcStore.HLen(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("length=%d\n", length)
			return nil
		},
	}
	hexistsCmd = &cobra.Command{
		Use:   "hexists [key] [field]",
		Short: "Checks whether a field exists in a hash",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := rpcStore.HExists(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Printf("found=%v\n", ok)
			return nil
		},
	}
	hgetallCmd = &cobra.Command{
		Use:   "hgetall [key]",
		Short: "Returns all field-value pairs in a hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := rpcStore.HGetAll(args[0])
			if err != nil {
				return err
			}
			for f, v := range fields {
				fmt.Printf("%s=%s\n", f, v)
			}
			return nil
		},
	}
	hincrbyCmd = &cobra.Command{
		Use:   "hincrby [key] [field] [delta]",
		Short: "Increments a hash field by an integer delta",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("delta must be an integer: %w", err)
			}
			result, err := rpcStore.HIncrBy(args[0], args[1], delta)
			if err != nil {
				return err
			}
			fmt.Printf("result=%d\n", result)
			return nil
		},
	}
	hincrbyfloatCmd = &cobra.Command{
		Use:   "hincrbyfloat [key] [field] [delta]",
		Short: "Increments a hash field by a floating point delta",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("delta must be a number: %w", err)
			}
			result, err := rpcStore.HIncrByFloat(args[0], args[1], delta)
			if err != nil {
				return err
			}
			fmt.Printf("result=%s\n", strconv.FormatFloat(result, 'f', -1, 64))
			return nil
		},
	}
)
