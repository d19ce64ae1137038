package analytics

import (
	"fmt"
	"sort"
)

func PrintStorageReport(report *StorageGrowthReport, fee int64) {
	fmt.Println("📦 Contract Storage Growth Report")
	fmt.Println("--------------------------------")
	fmt.Printf("Before: %d bytes\n", report.BeforeBytes)
	fmt.Printf("After:  %d bytes\n", report.AfterBytes)
	fmt.Printf("Delta:  %+d bytes\n", report.DeltaBytes)
	fmt.Printf("Fee Impact: %d stroops\n\n", fee)

	fmt.Println("Per-Key Changes:")
	keys := make([]string, 0, len(report.PerKeyDelta))
	for key := range report.PerKeyDelta {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if delta := report.PerKeyDelta[key]; delta != 0 {
			fmt.Printf("  %s: %+d bytes\n", key, delta)
		}
	}
}
