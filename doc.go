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

/*Package sas is the main package of the gosas library. It provides structures for
small-angle X-ray scattering profiles and dummy-atom (bead) models, facilities for
reading and writing the file formats involved in solution-scattering work, and
functions to manipulate and compare them.

	**gosas capabilities**

    Reads/writes 3-column scattering profiles (.dat), plain or compressed
	(gzip and zstd).

    Scales, offsets, normalizes, rebins and despikes profiles, with error
	propagation, and subtracts, averages and superimposes sets of them.

    Reads/writes dummy-atom models in mmCIF, and computes Rg, Dmax, volume
	and the normalized spatial discrepancy (NSD) between models.

    Writes/reads GNOM-style .out files with a P(r) distance distribution,
	so indirect-transform results can be fed to the ATSAS shape programs.

    The subpackage bift implements the Bayesian indirect Fourier transform.

    The subpackage atsas drives the external ATSAS programs (DAMMIF, DAMMIN,
	DAMAVER, CIFSUP, SASRES) and orchestrates full bead-model reconstructions.

    The subpackage sasplot produces plots of the results.

The external ATSAS programs are not distributed with gosas and must be
obtained and cited separately.
*/
package sas
