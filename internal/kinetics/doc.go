// Package kinetics holds the rate laws of the rhizosphere soil.
//
// All functions are pure. Temperature responses follow the generic
// three-coefficient form
//
//	f(T) = r_ref * (A*(T-T_ref)+B)^(1-C) * (A*(T-T_ref)+B)^(C*(T-T_ref)/10)
//
// which gives a linear response (C=0, B=1), a Q10 response (C=1, A=0, B>1)
// or a bell-shaped response (C=1, A<0). Degradation is Michaelis-Menten on
// the external exchange surface and concentrations are integrated with an
// explicit Euler step over the soil volume.
package kinetics
