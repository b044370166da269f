package report

import (
	"math"
	"time"
)

// lot is the unconsumed remainder of one buy. It lives only for the duration
// of a single report computation.
type lot struct {
	QuantityRemaining float64
	UnitCost          float64
	AcquisitionDate   time.Time
}

// applyFIFO walks one chronologically sorted group: buys push lots onto the
// back of the queue, sells consume from the front, splitting the first lot
// when the sale is smaller than it. Each sell emits exactly one ClosedTrade
// aggregating every lot slice it consumed.
func applyFIFO(key groupKey, transactions []Transaction) (*groupResult, error) {
	var openLots []lot
	result := &groupResult{}

	for _, tx := range transactions {
		switch tx.OperationType {
		case OperationBuy:
			openLots = append(openLots, lot{
				QuantityRemaining: tx.Quantity,
				UnitCost:          tx.UnitPrice,
				AcquisitionDate:   tx.EffectiveDate,
			})

		case OperationSell:
			remainingToSell := tx.Quantity
			var matchedLots []MatchedLot
			var costBasis float64

			for remainingToSell > quantityTolerance && len(openLots) > 0 {
				current := &openLots[0]
				taken := math.Min(remainingToSell, current.QuantityRemaining)

				matchedLots = append(matchedLots, MatchedLot{
					AcquisitionDate: current.AcquisitionDate,
					Quantity:        taken,
					UnitCost:        current.UnitCost,
				})
				costBasis += taken * current.UnitCost

				result.Summary.TotalInvested += taken * current.UnitCost
				result.Summary.TotalRecovered += taken * tx.UnitPrice
				result.Summary.QuantityClosed += taken

				current.QuantityRemaining -= taken
				remainingToSell -= taken
				if current.QuantityRemaining <= quantityTolerance {
					openLots = openLots[1:]
				}
			}

			if remainingToSell > quantityTolerance {
				return nil, &OversellError{
					OwnerID:           key.OwnerID,
					Asset:             key.Asset,
					Currency:          key.Currency,
					UnmatchedQuantity: remainingToSell,
					SaleDate:          tx.EffectiveDate,
				}
			}

			if len(matchedLots) > 0 {
				result.ClosedTrades = append(result.ClosedTrades, buildClosedTrade(key, tx, matchedLots, costBasis))
			}
		}
	}

	result.OpenLots = openLots
	return result, nil
}

func buildClosedTrade(key groupKey, sale Transaction, matchedLots []MatchedLot, costBasis float64) ClosedTrade {
	var quantitySold float64
	for _, matched := range matchedLots {
		quantitySold += matched.Quantity
	}
	proceeds := quantitySold * sale.UnitPrice
	// Commission is deducted on the sale side only; buy commission is never
	// capitalized into cost basis. That asymmetry is the reference behaviour
	// and is kept on purpose.
	netPnL := proceeds - costBasis - sale.Commission

	trade := ClosedTrade{
		OwnerID:       key.OwnerID,
		Asset:         key.Asset,
		Currency:      key.Currency,
		QuantitySold:  quantitySold,
		SaleUnitPrice: sale.UnitPrice,
		SaleDate:      sale.EffectiveDate,
		MatchedLots:   matchedLots,
		CostBasis:     costBasis,
		Proceeds:      proceeds,
		NetPnL:        netPnL,
	}
	if costBasis > 0 {
		trade.PnLPct = netPnL / costBasis * 100
	}
	return trade
}
