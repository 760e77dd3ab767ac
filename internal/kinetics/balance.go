package kinetics

// NetFlow sums inflows then subtracts outflows, left to right.
func NetFlow(in, out []float64) float64 {
	net := 0.0
	for _, v := range in {
		net += v
	}
	for _, v := range out {
		net -= v
	}
	return net
}

// Euler advances a concentration by one explicit step of the balance
// d(conc)/dt = net/volume.
func Euler(conc, dt, volume, net float64) float64 {
	return conc + (dt/volume)*net
}
