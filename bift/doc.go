/*
 * doc.go, part of gosas.
 *
 * Copyright 2025 The gosas authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

//Package bift implements the Bayesian indirect Fourier transform of a
//scattering profile into a real-space pair-distance distribution P(r),
//following Hansen (J. Appl. Cryst. 33, 2000). The regularization parameter
//alpha and the maximum dimension Dmax are selected by maximizing the
//Bayesian evidence over a coarse grid followed by a simplex refinement.
package bift
