package list

import (
	"fmt"
	"strconv"
	"time"

	"github.com/kvquill/quill/lib/blocking"
	"github.com/kvquill/quill/lib/keyspace/listvalue"
	"github.com/spf13/cobra"
)

var (
	lpushCmd = &cobra.Command{
		Use:   "lpush [key] [val]...",
		Short: "Prepends one or more values to the head of a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			vals := toByteSlices(args[1:])
			length, err := rpcStore.LPush(key, vals)
			if err != nil {
				return err
			}
			fmt.Printf("length=%d\n", length)
			return nil
		},
	}
	rpushCmd = &cobra.Command{
		Use:   "rpush [key] [val]...",
		Short: "Appends one or more values to the tail of a list",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			vals := toByteSlices(args[1:])
			length, err := rpcStore.RPush(key, vals)
			if err != nil {
				return err
			}
			fmt.Printf("length=%d\n", length)
			return nil
		},
	}
	lpopCmd = &cobra.Command{
		Use:   "lpop [key] [count]",
		Short: "Removes and returns elements from the head of a list",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			count := 1
			if len(args) == 2 {
				var err error
				count, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("count must be a number: %w", err)
				}
			}
			vals, ok, err := rpcStore.LPop(key, count)
			if err != nil {
				return err
			}
			printVals(vals, ok)
			return nil
		},
	}
	rpopCmd = &cobra.Command{
		Use:   "rpop [key] [count]",
		Short: "Removes and returns elements from the tail of a list",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			count := 1
			if len(args) == 2 {
				var err error
				count, err = strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("count must be a number: %w", err)
				}
			}
			vals, ok, err := rpcStore.RPop(key, count)
			if err != nil {
				return err
			}
			printVals(vals, ok)
			return nil
		},
	}
	llenCmd = &cobra.Command{
		Use:   "llen [key]",
		Short: "Returns the length of a list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			length, err := rpcStore.LLen(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("length=%d\n", length)
			return nil
		},
	}
	lindexCmd = &cobra.Command{
		Use:   "lindex [key] [index]",
		Short: "Returns the element at an index",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			val, ok, err := rpcStore.LIndex(args[0], index)
			if err != nil {
				return err
			}
			fmt.Printf("found=%v, val=%s\n", ok, val)
			return nil
		},
	}
	lsetCmd = &cobra.Command{
		Use:   "lset [key] [index] [val]",
		Short: "Sets the element at an index",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			if err := rpcStore.LSet(args[0], index, []byte(args[2])); err != nil {
				return err
			}
			fmt.Println("lset successfully")
			return nil
		},
	}
	lrangeCmd = &cobra.Command{
		Use:   "lrange [key] [start] [stop]",
		Short: "Returns a range of elements",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("start must be a number: %w", err)
			}
			stop, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("stop must be a number: %w", err)
			}
			vals, err := rpcStore.LRange(args[0], start, stop)
			if err != nil {
				return err
			}
			printVals(vals, true)
			return nil
		},
	}
	ltrimCmd = &cobra.Command{
		Use:   "ltrim [key] [start] [stop]",
		Short: "Trims a list to the given range",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("start must be a number: %w", err)
			}
			stop, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("stop must be a number: %w", err)
			}
			if err := rpcStore.LTrim(args[0], start, stop); err != nil {
				return err
			}
			fmt.Println("ltrim successfully")
			return nil
		},
	}
	linsertCmd = &cobra.Command{
		Use:   "linsert [key] [before|after] [pivot] [val]",
		Short: "Inserts a value before or after a pivot element",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var where listvalue.Pivot
			switch args[1] {
			case "before":
				where = listvalue.Before
			case "after":
				where = listvalue.After
			default:
				return fmt.Errorf("invalid pivot direction %q: must be 'before' or 'after'", args[1])
			}
			inserted, err := rpcStore.LInsert(args[0], []byte(args[2]), where, []byte(args[3]))
			if err != nil {
				return err
			}
			fmt.Printf("inserted=%v\n", inserted)
			return nil
		},
	}
	lremCmd = &cobra.Command{
		Use:   "lrem [key] [count] [val]",
		Short: "Removes elements equal to val",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			count, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("count must be a number: %w", err)
			}
			removed, err := rpcStore.LRem(args[0], []byte(args[2]), count)
			if err != nil {
				return err
			}
			fmt.Printf("removed=%d\n", removed)
			return nil
		},
	}
	blpopCmd = &cobra.Command{
		Use:   "blpop [key]... [timeoutSec]",
		Short: "Blocks until an element is available to pop from the head of one of the given keys",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlockingPop(args, listvalue.Head)
		},
	}
	brpopCmd = &cobra.Command{
		Use:   "brpop [key]... [timeoutSec]",
		Short: "Blocks until an element is available to pop from the tail of one of the given keys",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBlockingPop(args, listvalue.Tail)
		},
	}
	brpoplpushCmd = &cobra.Command{
		Use:   "brpoplpush [src] [dst] [timeoutSec]",
		Short: "Blocks until an element can be popped from the tail of src and pushed to the head of dst",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			timeoutSec, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("timeoutSec must be a number: %w", err)
			}
			c := rpcStore.NewBlockingClient("")
			reply, _ := rpcStore.BlockingPop(
				c,
				[]string{args[0]},
				listvalue.Tail,
				secondsToDuration(timeoutSec),
				args[1],
				listvalue.Head,
				false,
			)
			return printBlockingReply(reply)
		},
	}
	rpoplpushCmd = &cobra.Command{
		Use:   "rpoplpush [src] [dst]",
		Short: "Pops from the tail of src and pushes to the head of dst",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			vals, ok, err := rpcStore.RPop(args[0], 1)
			if err != nil {
				return err
			}
			if !ok || len(vals) == 0 {
				fmt.Println("found=false")
				return nil
			}
			if _, err := rpcStore.LPush(args[1], vals); err != nil {
				// Roll back onto the same end it was popped from (the tail)
				// so a failed push onto dst doesn't silently reverse src's
				// order.
				_, _ = rpcStore.RPush(args[0], vals)
				return err
			}
			fmt.Printf("val=%s\n", vals[0])
			return nil
		},
	}
)

func runBlockingPop(args []string, dir listvalue.Where) error {
	keys := args[:len(args)-1]
	timeoutSec, err := strconv.ParseFloat(args[len(args)-1], 64)
	if err != nil {
		return fmt.Errorf("timeoutSec must be a number: %w", err)
	}
	c := rpcStore.NewBlockingClient("")
	reply, _ := rpcStore.BlockingPop(c, keys, dir, secondsToDuration(timeoutSec), "", listvalue.Head, false)
	return printBlockingReply(reply)
}

func printBlockingReply(reply *blocking.Reply) error {
	if reply.Err != nil {
		return reply.Err
	}
	if reply.Nil {
		fmt.Println("found=false (timeout)")
		return nil
	}
	fmt.Printf("key=%s, val=%s\n", reply.Key, reply.Value)
	return nil
}

func secondsToDuration(sec float64) time.Duration {
	if sec <= 0 {
		return 0
	}
	return time.Duration(sec * float64(time.Second))
}

func toByteSlices(args []string) [][]byte {
	vals := make([][]byte, len(args))
	for i, a := range args {
		vals[i] = []byte(a)
	}
	return vals
}

func printVals(vals [][]byte, ok bool) {
	if !ok || len(vals) == 0 {
		fmt.Println("found=false")
		return
	}
	fmt.Printf("found=true, count=%d\n", len(vals))
	for i, v := range vals {
		fmt.Printf("%d) %s\n", i, v)
	}
}
