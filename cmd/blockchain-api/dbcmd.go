package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/chainrequest/blockchain-api/db"
	"github.com/chainrequest/blockchain-api/db/pebble"
	"github.com/chainrequest/blockchain-api/node"
	"github.com/chainrequest/blockchain-api/utils"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

func DBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Database related operations",
		Long:  `This command allows you to inspect a pebble database while the service is stopped.`,
	}

	dbCmd.PersistentFlags().String(dbPathF, defaultDBPath, dbPathUsage)
	dbCmd.AddCommand(DBSizeCmd())
	return dbCmd
}

func DBSizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "size",
		Short: "Calculate the number of entries and their size for each bucket",
		RunE:  dbSize,
	}
}

func dbSize(cmd *cobra.Command, _ []string) error {
	dbPath, err := cmd.Flags().GetString(dbPathF)
	if err != nil {
		return err
	}

	database, err := openDB(dbPath)
	if err != nil {
		return err
	}
	defer database.Close()

	var (
		totalSize  utils.DataSize
		totalCount uint
		items      [][]string
	)
	for _, b := range db.BucketValues() {
		size, err := db.SizeOf(cmd.Context(), database, b)
		if err != nil {
			return fmt.Errorf("bucket %s: %w", b, err)
		}
		items = append(items, []string{b.String(), utils.DataSize(size.Size).String(), fmt.Sprintf("%d", size.Count)})

		totalSize += utils.DataSize(size.Size)
		totalCount += size.Count
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"Bucket", "Size", "Count"})
	table.AppendBulk(items)
	table.SetFooter([]string{"Total", totalSize.String(), fmt.Sprintf("%d", totalCount)})
	table.Render()
	return nil
}

func openDB(path string) (db.DB, error) {
	if path == "" {
		var err error
		if path, err = node.DefaultDBPath(); err != nil {
			return nil, err
		}
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("database path %s does not exist", path)
	}

	database, err := pebble.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}
	return database, nil
}
