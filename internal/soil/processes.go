package soil

import (
	"fmt"

	"github.com/san-kum/rhizosoil/internal/dispatch"
	"github.com/san-kum/rhizosoil/internal/kinetics"
)

func (c *Component) registry() *dispatch.Registry {
	p := c.params
	return dispatch.NewRegistry().
		Process(HexoseDegradation, c.degradation(HexoseDegradation, p.degradation(p.Hexose)),
			CHexoseSoil, RootExchangeSurface, SoilTemperature).
		Process(MucilageDegradation, c.degradation(MucilageDegradation, p.degradation(p.Mucilage)),
			CsMucilageSoil, RootExchangeSurface, SoilTemperature).
		Process(CellsDegradation, c.degradation(CellsDegradation, p.degradation(p.Cells)),
			CsCellsSoil, RootExchangeSurface, SoilTemperature).
		Update(CHexoseSoil, balance(2),
			CHexoseSoil, VolumeSoil, TimeStep,
			HexoseExudation, PhloemHexoseExudation,
			HexoseUptakeFromSoil, PhloemHexoseUptakeFromSoil, HexoseDegradation).
		Update(CsMucilageSoil, balance(1),
			CsMucilageSoil, VolumeSoil, TimeStep,
			MucilageSecretion,
			MucilageDegradation).
		Update(CsCellsSoil, balance(1),
			CsCellsSoil, VolumeSoil, TimeStep,
			CellsRelease,
			CellsDegradation)
}

// degradation expects (concentration, exchange surface, temperature).
func (c *Component) degradation(name string, d kinetics.Degradation) dispatch.Kernel {
	return func(args []float64) (float64, error) {
		rate, unstable, err := d.Rate(args[0], args[1], args[2])
		if err != nil {
			return 0, err
		}
		if unstable {
			c.unstableTemperature(name, args[2])
		}
		return rate, nil
	}
}

// balance expects (concentration, volume, dt, inflows..., outflows...) with
// nIn inflows.
func balance(nIn int) dispatch.Kernel {
	return func(args []float64) (float64, error) {
		conc, volume, dt := args[0], args[1], args[2]
		if volume <= 0 {
			return 0, fmt.Errorf("%w (got %g)", ErrVolume, volume)
		}
		flows := args[3:]
		return kinetics.Euler(conc, dt, volume, kinetics.NetFlow(flows[:nIn], flows[nIn:])), nil
	}
}
