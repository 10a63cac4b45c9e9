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
 *
 * */

//Package atsas drives the bead-model reconstruction programs of the
//ATSAS suite (DAMMIF, DAMMIN, DAMAVER, CIFSUP and SASRES) through their
//command-line interfaces, in such a way that the reconstruction settings
//are as separated as possible from the choice of program used. Note that
//ATSAS itself is not free software and must be obtained and licensed
//separately from EMBL Hamburg.

package atsas
