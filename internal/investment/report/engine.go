package report

import (
	"sort"
)

// groupKey partitions transactions into independent FIFO sequences. The same
// asset traded in two currencies forms two sequences that never touch.
type groupKey struct {
	OwnerID  string
	Asset    string
	Currency string
}

type groupSummary struct {
	QuantityClosed float64
	TotalInvested  float64
	TotalRecovered float64
}

type groupResult struct {
	ClosedTrades []ClosedTrade
	OpenLots     []lot
	Summary      groupSummary
}

// Compute produces the full investment report from a snapshot of transactions.
// It is a pure function: no I/O, no state kept between calls, and the same
// input always yields the same output. The whole report is recomputed from
// full history on every call; an oversell anywhere aborts the computation.
func Compute(transactions []Transaction) (*Report, error) {
	if len(transactions) == 0 {
		return emptyReport(), nil
	}

	for i, tx := range transactions {
		if err := tx.validate(); err != nil {
			return nil, NewIndexedValidationError(i+1, err.Error())
		}
	}

	groups, keys := groupByOwnerAssetCurrency(transactions)

	result := emptyReport()
	for _, key := range keys {
		sorted := sortByEffectiveDate(groups[key])

		groupRes, err := applyFIFO(key, sorted)
		if err != nil {
			return nil, err
		}

		result.GlobalSummary.TotalInvested += groupRes.Summary.TotalInvested
		result.GlobalSummary.TotalRecovered += groupRes.Summary.TotalRecovered

		if groupRes.Summary.QuantityClosed > 0 {
			result.PerAsset = append(result.PerAsset, buildAssetSummary(key, groupRes.Summary))
		}
		result.ClosedTrades = append(result.ClosedTrades, groupRes.ClosedTrades...)

		if len(groupRes.OpenLots) > 0 {
			result.OpenPositions = append(result.OpenPositions, buildOpenPosition(key, groupRes.OpenLots))
		}
	}

	result.GlobalSummary.NetPnL = result.GlobalSummary.TotalRecovered - result.GlobalSummary.TotalInvested
	if result.GlobalSummary.TotalInvested > 0 {
		result.GlobalSummary.PnLPct = result.GlobalSummary.NetPnL / result.GlobalSummary.TotalInvested * 100
	}

	sortOutputs(result)
	return result, nil
}

// groupByOwnerAssetCurrency buckets transactions preserving input order, and
// returns the keys in deterministic order so iteration is reproducible.
func groupByOwnerAssetCurrency(transactions []Transaction) (map[groupKey][]Transaction, []groupKey) {
	groups := make(map[groupKey][]Transaction)
	var keys []groupKey

	for _, tx := range transactions {
		key := groupKey{OwnerID: tx.OwnerID, Asset: tx.Asset, Currency: tx.Currency}
		if _, exists := groups[key]; !exists {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], tx)
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Asset != keys[j].Asset {
			return keys[i].Asset < keys[j].Asset
		}
		if keys[i].OwnerID != keys[j].OwnerID {
			return keys[i].OwnerID < keys[j].OwnerID
		}
		return keys[i].Currency < keys[j].Currency
	})

	return groups, keys
}

// sortByEffectiveDate orders one bucket ascending by trade date. The sort must
// be stable: equal dates keep their original relative order, and that order
// decides which lot a same-day sale consumes first.
func sortByEffectiveDate(transactions []Transaction) []Transaction {
	sorted := make([]Transaction, len(transactions))
	copy(sorted, transactions)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].EffectiveDate.Before(sorted[j].EffectiveDate)
	})
	return sorted
}

func buildAssetSummary(key groupKey, summary groupSummary) AssetSummary {
	assetSummary := AssetSummary{
		OwnerID:        key.OwnerID,
		Asset:          key.Asset,
		Currency:       key.Currency,
		QuantityClosed: summary.QuantityClosed,
		TotalInvested:  summary.TotalInvested,
		TotalRecovered: summary.TotalRecovered,
		NetPnL:         summary.TotalRecovered - summary.TotalInvested,
	}
	if summary.QuantityClosed > 0 {
		assetSummary.AverageBuyPrice = summary.TotalInvested / summary.QuantityClosed
		assetSummary.AverageSellPrice = summary.TotalRecovered / summary.QuantityClosed
	}
	if summary.TotalInvested > 0 {
		assetSummary.PnLPct = assetSummary.NetPnL / summary.TotalInvested * 100
	}
	return assetSummary
}

func buildOpenPosition(key groupKey, openLots []lot) OpenPosition {
	position := OpenPosition{
		OwnerID:  key.OwnerID,
		Asset:    key.Asset,
		Currency: key.Currency,
		Lots:     make([]OpenLot, 0, len(openLots)),
	}
	for _, l := range openLots {
		position.Lots = append(position.Lots, OpenLot{
			AcquisitionDate: l.AcquisitionDate,
			Quantity:        l.QuantityRemaining,
			UnitCost:        l.UnitCost,
			CapitalInvested: l.QuantityRemaining * l.UnitCost,
		})
		position.QuantityRemaining += l.QuantityRemaining
		position.CapitalInvested += l.QuantityRemaining * l.UnitCost
	}
	if position.QuantityRemaining > 0 {
		position.AverageCost = position.CapitalInvested / position.QuantityRemaining
	}
	return position
}

func sortOutputs(result *Report) {
	sort.SliceStable(result.PerAsset, func(i, j int) bool {
		return result.PerAsset[i].Asset < result.PerAsset[j].Asset
	})
	sort.SliceStable(result.OpenPositions, func(i, j int) bool {
		return result.OpenPositions[i].Asset < result.OpenPositions[j].Asset
	})
	// Most recent sale first; ties keep the deterministic group order.
	sort.SliceStable(result.ClosedTrades, func(i, j int) bool {
		return result.ClosedTrades[i].SaleDate.After(result.ClosedTrades[j].SaleDate)
	})
}
